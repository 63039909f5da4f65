package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Klucze KV
const (
	KeyLastRefreshAt     = "last_refresh_at"
	KeyLastRefreshOrders = "last_refresh_orders"
	KeyLastRefreshSource = "last_refresh_source"
)

func GetKV(gdb *gorm.DB, key string) (string, bool, error) {
	var row KV
	err := gdb.Where("k = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.V, true, nil
}

func SetKV(gdb *gorm.DB, key, val string) error {
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&KV{K: key, V: val}).Error
}
