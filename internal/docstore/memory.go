package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps JSON-encoded documents in process. Values go through the
// same JSON round trip as the Postgres backend, so callers see identical types.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	now         func() time.Time
}

type memCollection struct {
	order []string
	docs  map[string]memDoc
}

type memDoc struct {
	data      []byte
	createdAt time.Time
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string]*memCollection{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collections[collection]
	if c == nil {
		return []Document{}, nil
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		doc, err := c.docs[id].document(id)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collections[collection]
	if c == nil {
		return Document{}, ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d.document(id)
}

func (s *MemoryStore) Where(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode filter value: %w", err)
	}

	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		v, ok := d.Fields[field]
		if !ok {
			continue
		}
		got, err := json.Marshal(v)
		if err != nil {
			continue
		}
		if bytes.Equal(got, want) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	if c == nil {
		c = &memCollection{docs: map[string]memDoc{}}
		s.collections[collection] = c
	}
	id := uuid.NewString()
	now := s.now()
	c.docs[id] = memDoc{data: data, createdAt: now, updatedAt: now}
	c.order = append(c.order, id)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	if c == nil {
		return ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}

	current := map[string]any{}
	if err := json.Unmarshal(d.data, &current); err != nil {
		return fmt.Errorf("decode document %s: %w", id, err)
	}
	for k, v := range fields {
		current[k] = v
	}
	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	d.data = data
	d.updatedAt = s.now()
	c.docs[id] = d
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d memDoc) document(id string) (Document, error) {
	fields := Fields{}
	if err := json.Unmarshal(d.data, &fields); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Document{ID: id, Fields: fields, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}
