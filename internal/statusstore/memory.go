package statusstore

import (
	"context"
	"sync"

	"github.com/bartek5186/spicedash/internal/orders"
)

// Memory żyje tylko do końca procesu.
type Memory struct {
	mu sync.RWMutex
	m  map[string]orders.Status
}

func NewMemory() *Memory {
	return &Memory{m: map[string]orders.Status{}}
}

func (s *Memory) Get(_ context.Context, orderID string) (orders.Status, bool, error) {
	id, err := normalizeID(orderID)
	if err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, orderID string, status orders.Status) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = status
	return nil
}

func (s *Memory) Delete(_ context.Context, orderID string) error {
	id, err := normalizeID(orderID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *Memory) All(_ context.Context) (orders.Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(orders.Overrides, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out, nil
}
