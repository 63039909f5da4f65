// internal/statusstore/store.go
package statusstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store trzyma lokalne override'y statusów (order_id -> status).
// Zapisy per zamówienie są last-write-wins, bez transakcji między kluczami.
type Store interface {
	Get(ctx context.Context, orderID string) (orders.Status, bool, error)
	Set(ctx context.Context, orderID string, status orders.Status) error
	Delete(ctx context.Context, orderID string) error
	All(ctx context.Context) (orders.Overrides, error)
}

const DefaultRedisKey = "order_status_overrides"

type Options struct {
	Backend       string `json:"backend"` // db | redis | memory
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
	Key           string `json:"key,omitempty"`
}

// Open buduje store wg konfiguracji. Gdy Redis nie odpowiada, spada na bazę lokalną.
// Zwrócone close zawsze jest nie-nil.
func Open(ctx context.Context, log zerolog.Logger, opt Options, gdb *gorm.DB) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(opt.Backend)) {
	case "", "db":
		if gdb == nil {
			return nil, noop, fmt.Errorf("statusstore: backend db bez bazy")
		}
		return NewSQL(gdb), noop, nil

	case "memory":
		return NewMemory(), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opt.RedisAddr,
			Password: opt.RedisPassword,
			DB:       opt.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			if gdb == nil {
				return nil, noop, fmt.Errorf("statusstore: redis %s: %w", opt.RedisAddr, err)
			}
			log.Warn().Err(err).Str("addr", opt.RedisAddr).Msg("redis niedostępny, override'y w bazie lokalnej")
			return NewSQL(gdb), noop, nil
		}
		return NewRedis(client, opt.Key), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("statusstore: nieznany backend %q", opt.Backend)
	}
}

func normalizeID(orderID string) (string, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return "", fmt.Errorf("statusstore: pusty order id")
	}
	return id, nil
}
