package catalog

import (
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

// AllCategories is the public listing's "no category filter" value.
const AllCategories = "All"

// Listing filters the public catalog.
type Listing struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

func (l Listing) Apply(products []Product) []Product {
	var byCategory query.Predicate[Product]
	if l.Category != "" && l.Category != AllCategories {
		byCategory = func(p Product) bool { return p.Category == l.Category }
	}
	bySearch := func(p Product) bool {
		return query.AnyContainsFold(l.Search, p.Name, p.Description, p.Category)
	}
	return query.Filter(products, byCategory, bySearch)
}

// PublicCategories is "All" followed by the sorted distinct categories.
func PublicCategories(products []Product) []string {
	return append([]string{AllCategories}, Categories(products)...)
}

// Categories are the sorted distinct categories of products.
func Categories(products []Product) []string {
	return query.Unique(products, func(p Product) string { return p.Category })
}
