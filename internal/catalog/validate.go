package catalog

import (
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

// NewCategoryOption switches the category select into free-text entry.
const NewCategoryOption = "__new__"

// Input is the admin product form.
type Input struct {
	Name        string  `json:"product_name"`
	Price       float64 `json:"product_price"`
	Category    string  `json:"category"`
	NewCategory string  `json:"newCategory,omitempty"`
	Description string  `json:"product_description"`
	ImageURL    string  `json:"product_img_url"`
	Featured    bool    `json:"feature_product"`
	Stock       *int    `json:"product_stock"`
}

// ResolvedCategory is the free-text category when the escape was chosen.
func (in Input) ResolvedCategory() string {
	if in.Category == NewCategoryOption {
		return strings.TrimSpace(in.NewCategory)
	}
	return strings.TrimSpace(in.Category)
}

func (in Input) Validate() validators.FieldErrors {
	fe := validators.FieldErrors{}
	if validators.Blank(in.Name) {
		fe["product_name"] = "Name is required"
	}
	if in.Price <= 0 {
		fe["product_price"] = "Price must be greater than 0"
	}
	if in.ResolvedCategory() == "" {
		fe["category"] = "Category is required"
	}
	if in.Stock == nil || *in.Stock < 0 {
		fe["product_stock"] = "Stock must be 0 or greater"
	}
	if validators.Blank(in.Description) {
		fe["product_description"] = "Description is required"
	}
	if validators.Blank(in.ImageURL) {
		fe["product_img_url"] = "Image URL is required"
	}
	return fe
}

func (in Input) fields() docstore.Fields {
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	return docstore.Fields{
		"product_name":        strings.TrimSpace(in.Name),
		"product_price":       in.Price,
		"category":            in.ResolvedCategory(),
		"product_description": strings.TrimSpace(in.Description),
		"product_img_url":     strings.TrimSpace(in.ImageURL),
		"feature_product":     in.Featured,
		"product_stock":       stock,
	}
}

func (in Input) createFields(now time.Time) docstore.Fields {
	f := in.fields()
	f["created_date"] = now.UTC()
	return f
}
