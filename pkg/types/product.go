package types

import "github.com/shopspring/decimal"

func init() {
	// The storefront wire format carries money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry as served by GET /products.
type Product struct {
	ID       string          `json:"_id" yaml:"id" validate:"required"`
	Name     string          `json:"name" yaml:"name" validate:"required"`
	Category string          `json:"category" yaml:"category"`
	Cost     decimal.Decimal `json:"cost" yaml:"cost" validate:"gte=0"`
	Rating   float64         `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	Image    string          `json:"image" yaml:"image" validate:"omitempty,url"`
}

// IndexProducts maps products by id. Later duplicates win.
func IndexProducts(products []Product) map[string]Product {
	idx := make(map[string]Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}
