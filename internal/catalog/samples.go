package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

var samples = []docstore.Fields{
	{
		"product_name":        "Organic Cotton T-Shirt",
		"product_price":       29.99,
		"category":            "Clothing",
		"product_description": "Made from 100% organic cotton, this t-shirt is both comfortable and eco-friendly.",
		"product_img_url":     "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=500&q=60",
		"feature_product":     true,
	},
	{
		"product_name":        "Bamboo Toothbrush",
		"product_price":       12.99,
		"category":            "Personal Care",
		"product_description": "Eco-friendly bamboo toothbrush with soft bristles.",
		"product_img_url":     "https://images.unsplash.com/photo-1607619056574-7b8d3ee536b2?auto=format&fit=crop&w=500&q=60",
		"feature_product":     false,
	},
	{
		"product_name":        "Reusable Water Bottle",
		"product_price":       24.99,
		"category":            "Accessories",
		"product_description": "Stainless steel water bottle that keeps drinks cold for 24 hours.",
		"product_img_url":     "https://images.unsplash.com/photo-1602143407151-7111542de6e8?auto=format&fit=crop&w=500&q=60",
		"feature_product":     true,
	},
}

// SeedSamples adds the sample products to an empty catalog and reports how
// many it wrote. A catalog that already has products is left alone.
func SeedSamples(ctx context.Context, store docstore.Store, now time.Time) (int, error) {
	existing, err := store.List(ctx, Collection)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, s := range samples {
		f := docstore.Fields{"created_date": now.UTC()}
		for k, v := range s {
			f[k] = v
		}
		if _, err := store.Create(ctx, Collection, f); err != nil {
			return i, fmt.Errorf("seed %v: %w", s["product_name"], err)
		}
	}
	return len(samples), nil
}
