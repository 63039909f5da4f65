package statusstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bartek5186/spicedash/internal/db"
	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *db.Handle {
	t.Helper()
	h, err := db.OpenAt(t.TempDir(), db.Options{Driver: "sqlite-pure"})
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"sql":    NewSQL(openDB(t).DB),
		"redis":  NewRedis(client, ""),
		"memory": NewMemory(),
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "1001")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "1001", orders.StatusComplete))
			require.NoError(t, s.Set(ctx, " 1002 ", orders.StatusComplete))
			// last-write-wins
			require.NoError(t, s.Set(ctx, "1001", orders.StatusComplete))

			st, ok, err := s.Get(ctx, "1001")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, orders.StatusComplete, st)

			all, err := s.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, orders.Overrides{"1001": orders.StatusComplete, "1002": orders.StatusComplete}, all)

			require.NoError(t, s.Delete(ctx, "1001"))
			require.NoError(t, s.Delete(ctx, "missing"))

			all, err = s.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, orders.Overrides{"1002": orders.StatusComplete}, all)
		})
	}
}

func TestStore_EmptyIDRejected(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Set(ctx, "  ", orders.StatusComplete))
			_, _, err := s.Get(ctx, "")
			assert.Error(t, err)
			assert.Error(t, s.Delete(ctx, ""))
		})
	}
}

func TestRedis_SingleHashKey(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedis(client, "")
	require.NoError(t, s.Set(ctx, "77", orders.StatusComplete))

	assert.Equal(t, "Complete", mr.HGet(DefaultRedisKey, "77"))
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	h := openDB(t)

	s, closeFn, err := Open(ctx, log, Options{}, h.DB)
	require.NoError(t, err)
	assert.IsType(t, &SQL{}, s)
	assert.NoError(t, closeFn())

	s, _, err = Open(ctx, log, Options{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	mr := miniredis.RunT(t)
	s, closeFn, err = Open(ctx, log, Options{Backend: "redis", RedisAddr: mr.Addr()}, h.DB)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, s)
	assert.NoError(t, closeFn())

	_, _, err = Open(ctx, log, Options{Backend: "etcd"}, h.DB)
	assert.Error(t, err)

	_, _, err = Open(ctx, log, Options{Backend: "db"}, nil)
	assert.Error(t, err)
}

func TestOpen_RedisDownFallsBackToSQL(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s, _, err := Open(context.Background(), zerolog.Nop(), Options{Backend: "redis", RedisAddr: addr}, openDB(t).DB)
	require.NoError(t, err)
	assert.IsType(t, &SQL{}, s)

	_, _, err = Open(context.Background(), zerolog.Nop(), Options{Backend: "redis", RedisAddr: addr}, nil)
	assert.Error(t, err)
}
