package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

type FeaturedFilter string

const (
	FeaturedAll  FeaturedFilter = "all"
	FeaturedOnly FeaturedFilter = "featured"
	NotFeatured  FeaturedFilter = "not-featured"
)

func ParseFeaturedFilter(s string) FeaturedFilter {
	switch FeaturedFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FeaturedOnly:
		return FeaturedOnly
	case NotFeatured:
		return NotFeatured
	}
	return FeaturedAll
}

// Filter narrows the admin product list. Empty Category or "all" keeps every
// category.
type Filter struct {
	Search   string         `json:"search"`
	Category string         `json:"category"`
	Featured FeaturedFilter `json:"featured"`
}

func (f Filter) predicates() []query.Predicate[Product] {
	preds := []query.Predicate[Product]{
		func(p Product) bool { return query.ContainsFold(p.Name, f.Search) },
	}
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		preds = append(preds, func(p Product) bool { return p.Category == f.Category })
	}
	switch f.Featured {
	case FeaturedOnly:
		preds = append(preds, func(p Product) bool { return p.Featured })
	case NotFeatured:
		preds = append(preds, func(p Product) bool { return !p.Featured })
	}
	return preds
}

type View struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
	Filter     Filter    `json:"filter"`
	Total      int       `json:"total"`
}

// Manager is one admin's product editor. It reads the whole collection once
// and filters locally; every successful write triggers a fresh read.
type Manager struct {
	mu       sync.Mutex
	store    docstore.Store
	now      func() time.Time
	products []Product
	loaded   bool
	filter   Filter
}

func NewManager(store docstore.Store, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now, filter: Filter{Featured: FeaturedAll}}
}

// Load reads the collection when it has not been read yet or refresh is set.
func (m *Manager) Load(ctx context.Context, refresh bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded && !refresh {
		return nil
	}
	return m.fetch(ctx)
}

func (m *Manager) fetch(ctx context.Context) error {
	docs, err := m.store.List(ctx, Collection)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		p, err := fromDocument(d)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	m.products = products
	m.loaded = true
	return nil
}

func (m *Manager) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Featured == "" {
		f.Featured = FeaturedAll
	}
	m.filter = f
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	visible := query.Filter(m.products, m.filter.predicates()...)
	return View{
		Products:   visible,
		Categories: CategoryOptions(m.products),
		Filter:     m.filter,
		Total:      len(m.products),
	}
}

// Products returns every loaded product, ignoring filters.
func (m *Manager) Products() []Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Product(nil), m.products...)
}

// CategoryOptions are the observed categories plus the free-text escape.
func CategoryOptions(products []Product) []string {
	return append(Categories(products), NewCategoryOption)
}

// Create validates in and adds the product.
func (m *Manager) Create(ctx context.Context, in Input) (string, error) {
	if err := in.Validate().Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.store.Create(ctx, Collection, in.createFields(m.now()))
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	m.refetch(ctx)
	return id, nil
}

func (m *Manager) Update(ctx context.Context, id string, in Input) error {
	if err := in.Validate().Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Update(ctx, Collection, id, in.fields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update product %s: %w", id, err)
	}
	m.refetch(ctx)
	return nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	m.refetch(ctx)
	return nil
}

// refetch re-reads after a write. A failed read leaves the editor unloaded so
// the next Load tries again.
func (m *Manager) refetch(ctx context.Context) {
	if err := m.fetch(ctx); err != nil {
		m.loaded = false
	}
}
