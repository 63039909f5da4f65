package statusstore

import (
	"context"
	"errors"

	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/redis/go-redis/v9"
)

// Redis trzyma wszystkie override'y w jednym hashu (pole = order_id),
// więc kilka instancji dashboardu widzi te same oznaczenia.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Get(ctx context.Context, orderID string) (orders.Status, bool, error) {
	id, err := normalizeID(orderID)
	if err != nil {
		return "", false, err
	}
	v, err := r.client.HGet(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return orders.Status(v), true, nil
}

func (r *Redis) Set(ctx context.Context, orderID string, status orders.Status) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key, id, string(status)).Err()
}

func (r *Redis) Delete(ctx context.Context, orderID string) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	return r.client.HDel(ctx, r.key, id).Err()
}

func (r *Redis) All(ctx context.Context) (orders.Overrides, error) {
	m, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(orders.Overrides, len(m))
	for k, v := range m {
		out[k] = orders.Status(v)
	}
	return out, nil
}
