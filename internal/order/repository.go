package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

var ErrNotFound = errors.New("order not found")

// Repository is the back office's access to the orders collection.
type Repository struct {
	store docstore.Store
	now   func() time.Time
}

func NewRepository(store docstore.Store, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{store: store, now: now}
}

func (r *Repository) ListAll(ctx context.Context) ([]AdminOrder, error) {
	docs, err := r.store.List(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	now := r.now()
	out := make([]AdminOrder, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d, now))
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

// UpdateStatus writes status and updated_date together.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	err := r.store.Update(ctx, Collection, id, docstore.Fields{
		"status":       string(status),
		"updated_date": at.UTC(),
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update order %s: %w", id, err)
	}
	return nil
}

// FromDocument reads an order defensively: missing text becomes "N/A",
// missing or non-numeric amounts count as zero, missing dates become now.
func FromDocument(doc docstore.Document, now time.Time) AdminOrder {
	f := doc.Fields
	o := AdminOrder{
		ID:           doc.ID,
		CustomerName: textOr(f["full_name"], "N/A"),
		PhoneNumber:  textOr(f["phone_number"], "N/A"),
		Address:      textOr(f["address"], "N/A"),
		City:         textOr(f["city"], "N/A"),
		Status:       textOr(f["status"], string(StatusNew)),
		Items:        []AdminItem{},
	}

	if t, ok := docstore.Time(f["created_date"]); ok {
		o.CreatedAt = t
	} else {
		o.CreatedAt = now
	}
	if t, ok := docstore.Time(f["updated_date"]); ok {
		o.UpdatedAt = t
	} else {
		o.UpdatedAt = o.CreatedAt
	}

	lines, _ := f["orders"].([]any)
	total := decimal.Zero
	for _, raw := range lines {
		m, ok := raw.(map[string]any)
		if !ok {
			o.Items = append(o.Items, AdminItem{Name: "Invalid Product"})
			continue
		}
		it := AdminItem{
			Name:     textOr(m["product_name"], "Unknown Product"),
			Quantity: docstore.Number(m["product_quantity"]),
			Price:    docstore.Number(m["product_price"]),
		}
		o.Items = append(o.Items, it)
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromFloat(it.Quantity)))
	}
	o.Total = total.InexactFloat64()
	return o
}

func textOr(v any, def string) string {
	if s := docstore.String(v); s != "" {
		return s
	}
	return def
}
