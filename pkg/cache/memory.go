package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a process-local Store. It is not shared between service
// instances.
type Memory[V any] struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]entry[V]
}

func NewMemory[V any](clock clockwork.Clock) *Memory[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory[V]{clock: clock, entries: make(map[string]entry[V])}
}

func (m *Memory[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = entry[V]{value: value, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return zero, false, nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return zero, false, nil
	}
	return e.value, true, nil
}

func (m *Memory[V]) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory[V]) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Memory[V]) Run(ctx context.Context, interval time.Duration) {
	t := m.clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			m.Sweep()
		}
	}
}
