package integrations

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) Name() string { return "stub" }
func (stubSource) FetchOrders(context.Context) ([]orders.Order, error) {
	return nil, nil
}
func (stubSource) MarkComplete(context.Context, string) error { return ErrReadOnly }

func TestRegistry_RegisterAndGet(t *testing.T) {
	Register("zz-stub", func(zerolog.Logger, json.RawMessage, Deps) (Source, error) {
		return stubSource{}, nil
	})

	f, ok := Get("zz-stub")
	require.True(t, ok)
	src, err := f(zerolog.Nop(), nil, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "stub", src.Name())
	assert.ErrorIs(t, src.MarkComplete(context.Background(), "1"), ErrReadOnly)

	_, ok = Get("does-not-exist")
	assert.False(t, ok)

	names := Names()
	assert.Contains(t, names, "zz-stub")
	assert.IsIncreasing(t, names)
}
