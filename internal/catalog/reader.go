package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

var ErrNotFound = errors.New("product not found")

// Reader is the read-only view of the products collection.
type Reader struct {
	store  docstore.Store
	logger *log.Logger
}

func NewReader(store docstore.Store, logger *log.Logger) *Reader {
	return &Reader{store: store, logger: logger}
}

func (r *Reader) List(ctx context.Context) ([]Product, error) {
	docs, err := r.store.List(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return r.decodeAll(docs), nil
}

func (r *Reader) Get(ctx context.Context, id string) (Product, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	p, err := fromDocument(doc)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Featured lists the products flagged for the landing page.
func (r *Reader) Featured(ctx context.Context) ([]Product, error) {
	docs, err := r.store.Where(ctx, Collection, "feature_product", true)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return r.decodeAll(docs), nil
}

// decodeAll skips documents that do not decode so one bad record does not
// hide the whole catalog.
func (r *Reader) decodeAll(docs []docstore.Document) []Product {
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		p, err := fromDocument(d)
		if err != nil {
			r.logger.Printf("catalog: skipping product %s: %v", d.ID, err)
			continue
		}
		out = append(out, p)
	}
	return out
}
