package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Keys of the per-visitor values.
const (
	KeyCart     = "cart"
	KeyLanguage = "language"
)

var ErrNotFound = errors.New("session value not found")

// KV stores small per-visitor values.
type KV interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Put(ctx context.Context, sessionID, key string, value []byte) error
}

// Expirer is implemented by stores that can drop values nobody touched since
// before.
type Expirer interface {
	Expire(ctx context.Context, before time.Time) (int64, error)
}

type entry struct {
	value     []byte
	updatedAt time.Time
}

type MemoryKV struct {
	mu   sync.Mutex
	data map[string]map[string]entry
	now  func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]map[string]entry{}, now: time.Now}
}

func (m *MemoryKV) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryKV) Put(ctx context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[sessionID] == nil {
		m.data[sessionID] = map[string]entry{}
	}
	m.data[sessionID][key] = entry{value: append([]byte(nil), value...), updatedAt: m.now()}
	return nil
}

func (m *MemoryKV) Expire(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, values := range m.data {
		for k, e := range values {
			if e.updatedAt.Before(before) {
				delete(values, k)
				n++
			}
		}
		if len(values) == 0 {
			delete(m.data, id)
		}
	}
	return n, nil
}
