package order

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

type SortKey string

const (
	SortID           SortKey = "id"
	SortCustomerName SortKey = "customerName"
	SortPhoneNumber  SortKey = "phoneNumber"
	SortCity         SortKey = "city"
	SortDate         SortKey = "date"
	SortTotal        SortKey = "total"
	SortStatus       SortKey = "status"
)

var comparators = map[SortKey]query.Comparator[AdminOrder]{
	SortID:           query.ByFold(func(o AdminOrder) string { return o.ID }),
	SortCustomerName: query.ByFold(func(o AdminOrder) string { return o.CustomerName }),
	SortPhoneNumber:  query.ByFold(func(o AdminOrder) string { return o.PhoneNumber }),
	SortCity:         query.ByFold(func(o AdminOrder) string { return o.City }),
	SortDate:         query.By(func(o AdminOrder) int64 { return o.CreatedAt.UnixNano() }),
	SortTotal:        query.By(func(o AdminOrder) float64 { return o.Total }),
	SortStatus:       query.ByFold(func(o AdminOrder) string { return o.Status }),
}

func ParseSortKey(s string) (SortKey, bool) {
	k := SortKey(strings.TrimSpace(s))
	_, ok := comparators[k]
	return k, ok
}

// DefaultSort shows the newest orders first.
var DefaultSort = query.SortState[SortKey]{Key: SortDate, Direction: query.Desc}

type PriceBucket string

const (
	PriceAll      PriceBucket = "all"
	Price0To50    PriceBucket = "0-50"
	Price51To100  PriceBucket = "51-100"
	Price101To200 PriceBucket = "101-200"
	PriceAbove200 PriceBucket = "200+"
)

func ParsePriceBucket(s string) PriceBucket {
	switch b := PriceBucket(strings.TrimSpace(s)); b {
	case Price0To50, Price51To100, Price101To200, PriceAbove200:
		return b
	}
	return PriceAll
}

// Contains uses closed upper bounds: 50 is in 0-50, 50.01 is in 51-100.
func (b PriceBucket) Contains(total float64) bool {
	switch b {
	case Price0To50:
		return total >= 0 && total <= 50
	case Price51To100:
		return total > 50 && total <= 100
	case Price101To200:
		return total > 100 && total <= 200
	case PriceAbove200:
		return total > 200
	}
	return true
}

type Filter struct {
	Search string      `json:"search"`
	Status string      `json:"status"`
	Price  PriceBucket `json:"price"`
}

func (f Filter) predicates() []query.Predicate[AdminOrder] {
	preds := []query.Predicate[AdminOrder]{
		func(o AdminOrder) bool { return query.AnyContainsFold(f.Search, o.CustomerName, o.ID) },
	}
	if f.Status != "" && !strings.EqualFold(f.Status, StatusAll) {
		preds = append(preds, func(o AdminOrder) bool { return strings.EqualFold(o.Status, f.Status) })
	}
	if f.Price != "" && f.Price != PriceAll {
		preds = append(preds, func(o AdminOrder) bool { return f.Price.Contains(o.Total) })
	}
	return preds
}

type View struct {
	Orders        []AdminOrder             `json:"orders"`
	Filter        Filter                   `json:"filter"`
	Sort          query.SortState[SortKey] `json:"sort"`
	Total         int                      `json:"total"`
	StatusOptions []string                 `json:"statusOptions"`
}

// Manager is one admin's order editor over a once-read snapshot of the
// collection. Writes go to the store first and are mirrored locally only when
// they succeed.
type Manager struct {
	mu     sync.Mutex
	repo   *Repository
	now    func() time.Time
	orders []AdminOrder
	loaded bool
	filter Filter
	sort   query.SortState[SortKey]
}

func NewManager(repo *Repository, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{repo: repo, now: now, filter: Filter{Status: StatusAll, Price: PriceAll}, sort: DefaultSort}
}

func (m *Manager) Load(ctx context.Context, refresh bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded && !refresh {
		return nil
	}
	orders, err := m.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	m.orders = orders
	m.loaded = true
	return nil
}

func (m *Manager) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.Price == "" {
		f.Price = PriceAll
	}
	m.filter = f
}

// SortBy selects key, toggling direction when it is already selected.
func (m *Manager) SortBy(key SortKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = m.sort.Toggle(key)
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	visible := query.Apply(m.orders, comparators[m.sort.Key], m.sort.Direction, m.filter.predicates()...)
	return View{
		Orders:        visible,
		Filter:        m.filter,
		Sort:          m.sort,
		Total:         len(m.orders),
		StatusOptions: StatusOptions(),
	}
}

// Orders returns every loaded order in view order, ignoring filters.
func (m *Manager) Orders() []AdminOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return query.Sort(m.orders, comparators[m.sort.Key], m.sort.Direction)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.orders = query.Filter(m.orders, func(o AdminOrder) bool { return o.ID != id })
	return nil
}

func (m *Manager) UpdateStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now().UTC()
	if err := m.repo.UpdateStatus(ctx, id, status, at); err != nil {
		return err
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = string(status)
			m.orders[i].UpdatedAt = at
		}
	}
	return nil
}

// StatusOptions is "all" followed by every known status.
func StatusOptions() []string {
	out := []string{StatusAll}
	for _, s := range Statuses {
		out = append(out, string(s))
	}
	return out
}
