// internal/integrations/types.go
package integrations

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrReadOnly: źródło nie potrafi oznaczyć zamówienia jako zakończone.
var ErrReadOnly = errors.New("integrations: source is read-only")

// Source dostarcza zamówienia do dashboardu.
type Source interface {
	Name() string
	FetchOrders(ctx context.Context) ([]orders.Order, error)
	MarkComplete(ctx context.Context, orderID string) error // ErrReadOnly gdy nieobsługiwane
}

// Deps to współdzielone zasoby przekazywane fabrykom (db może być nil).
type Deps struct {
	DB *gorm.DB
}

type Factory func(log zerolog.Logger, raw json.RawMessage, deps Deps) (Source, error)
