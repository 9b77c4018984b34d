package cart

import (
	"context"
	"sync"
)

// MemoryPersister keeps the encoded cart in memory.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryPersister(initial []byte) *MemoryPersister {
	return &MemoryPersister{data: initial}
}

func (p *MemoryPersister) Load(ctx context.Context) ([]Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, nil
	}
	return DecodeItems(p.data)
}

func (p *MemoryPersister) Save(ctx context.Context, items []Item) error {
	data, err := EncodeItems(items)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
	return nil
}

// Raw returns the stored bytes.
func (p *MemoryPersister) Raw() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.data...)
}
