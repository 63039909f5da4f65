package statusstore

import (
	"context"
	"errors"
	"time"

	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/orders"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL trzyma override'y w tabeli status_overrides.
type SQL struct {
	db *gorm.DB
}

func NewSQL(gdb *gorm.DB) *SQL {
	return &SQL{db: gdb}
}

func (s *SQL) Get(ctx context.Context, orderID string) (orders.Status, bool, error) {
	id, err := normalizeID(orderID)
	if err != nil {
		return "", false, err
	}
	var row db.StatusOverride
	err = s.db.WithContext(ctx).Where("order_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return orders.Status(row.Status), true, nil
}

func (s *SQL) Set(ctx context.Context, orderID string, status orders.Status) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&db.StatusOverride{OrderID: id, Status: string(status), UpdatedAt: time.Now()}).Error
}

func (s *SQL) Delete(ctx context.Context, orderID string) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("order_id = ?", id).Delete(&db.StatusOverride{}).Error
}

func (s *SQL) All(ctx context.Context) (orders.Overrides, error) {
	var rows []db.StatusOverride
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(orders.Overrides, len(rows))
	for _, r := range rows {
		out[r.OrderID] = orders.Status(r.Status)
	}
	return out, nil
}
