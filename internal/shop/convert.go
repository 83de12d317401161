package shop

import (
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/types"
)

func toProducts(rows []models.Product) []types.Product {
	out := make([]types.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Product{
			ID:       r.ID,
			Name:     r.Name,
			Category: r.Category,
			Cost:     r.Cost,
			Rating:   r.Rating,
			Image:    r.Image,
		})
	}
	return out
}

func toProductModel(p types.Product) models.Product {
	return models.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Cost:     p.Cost,
		Rating:   p.Rating,
		Image:    p.Image,
	}
}

func toEntries(lines []models.CartLine) []types.CartEntry {
	out := make([]types.CartEntry, 0, len(lines))
	for _, l := range lines {
		out = append(out, types.CartEntry{ProductID: l.ProductID, Qty: l.Qty})
	}
	return out
}

func toAddresses(rows []models.Address) []types.Address {
	out := make([]types.Address, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Address{ID: r.ID, Text: r.Text})
	}
	return out
}
