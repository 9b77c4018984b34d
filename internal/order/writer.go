package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

// Writer creates order documents.
type Writer struct {
	store docstore.Store
}

func NewWriter(store docstore.Store) *Writer {
	return &Writer{store: store}
}

// Create issues a single create call; nothing is written when it fails.
func (w *Writer) Create(ctx context.Context, o New) (Placed, error) {
	at := o.SubmittedAt.UTC()

	lines := make([]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, map[string]any{
			"product_id":       l.ProductID,
			"product_name":     l.ProductName,
			"product_price":    l.Price,
			"product_quantity": l.Quantity,
		})
	}

	fields := docstore.Fields{
		"full_name":    strings.TrimSpace(o.FullName),
		"phone_number": strings.TrimSpace(o.PhoneNumber),
		"city":         strings.TrimSpace(o.City),
		"address":      strings.TrimSpace(o.Address),
		"orders":       lines,
		"status":       string(StatusNew),
		"created_date": at,
		"updated_date": at,
	}

	id, err := w.store.Create(ctx, Collection, fields)
	if err != nil {
		return Placed{}, fmt.Errorf("create order: %w", err)
	}

	return Placed{
		ID:          id,
		FullName:    fields["full_name"].(string),
		PhoneNumber: fields["phone_number"].(string),
		City:        fields["city"].(string),
		Lines:       o.Lines,
		Total:       Total(o.Lines),
		Status:      StatusNew,
		CreatedAt:   at,
	}, nil
}
