package catalog

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

const Collection = "products"

type Product struct {
	ID          string    `json:"id" doc:"-"`
	Name        string    `json:"product_name" doc:"product_name"`
	Price       float64   `json:"product_price" doc:"product_price"`
	Category    string    `json:"category" doc:"category"`
	Description string    `json:"product_description" doc:"product_description"`
	ImageURL    string    `json:"product_img_url" doc:"product_img_url"`
	Featured    bool      `json:"feature_product" doc:"feature_product"`
	Stock       int       `json:"product_stock" doc:"product_stock"`
	CreatedAt   time.Time `json:"created_date" doc:"created_date"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

func fromDocument(doc docstore.Document) (Product, error) {
	var p Product
	if err := doc.DataTo(&p); err != nil {
		return Product{}, err
	}
	p.ID = doc.ID
	return p, nil
}
