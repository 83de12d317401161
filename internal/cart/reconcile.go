// Package cart reconciles server cart entries with the catalog and issues
// quantity changes.
package cart

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Item is a cart entry enriched with its catalog product. It is derived and
// recomputed whenever either side changes.
type Item struct {
	Entry   types.CartEntry
	Product types.Product
}

func (i Item) ProductID() string { return i.Entry.ProductID }
func (i Item) Qty() int          { return i.Entry.Qty }

// LineTotal is cost times quantity, zero for absent lines.
func (i Item) LineTotal() decimal.Decimal {
	if i.Entry.Qty <= 0 {
		return decimal.Zero
	}
	return i.Product.Cost.Mul(decimal.NewFromInt(int64(i.Entry.Qty)))
}

// Merge joins entries with catalog products, keeping entry order. An entry
// whose product is missing from the catalog fails the whole merge.
func Merge(entries []types.CartEntry, catalog []types.Product) ([]Item, error) {
	items := make([]Item, 0, len(entries))
	if len(entries) == 0 {
		return items, nil
	}
	idx := types.IndexProducts(catalog)
	for _, entry := range entries {
		product, ok := idx[entry.ProductID]
		if !ok {
			return nil, pkgerrors.New(
				pkgerrors.CodeDataIntegrity,
				fmt.Sprintf("cart references product %q which is not in the catalog", entry.ProductID),
			).WithDetails(map[string]any{"productId": entry.ProductID})
		}
		items = append(items, Item{Entry: entry, Product: product})
	}
	return items, nil
}

// TotalValue sums cost times qty over lines with qty > 0. ok is false for an
// empty item list, which is distinct from a cart worth zero.
func TotalValue(items []Item) (total decimal.Decimal, ok bool) {
	if len(items) == 0 {
		return decimal.Zero, false
	}
	total = decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total, true
}

// Count returns the number of lines with a positive quantity.
func Count(items []Item) int {
	n := 0
	for _, item := range items {
		if item.Entry.Qty > 0 {
			n++
		}
	}
	return n
}

// Quantity sums the quantities of all lines.
func Quantity(items []Item) int {
	n := 0
	for _, item := range items {
		if item.Entry.Qty > 0 {
			n += item.Entry.Qty
		}
	}
	return n
}

// Find returns the item for productID when present with a positive quantity.
func Find(items []Item, productID string) (Item, bool) {
	for _, item := range items {
		if item.Entry.ProductID == productID && item.Entry.Qty > 0 {
			return item, true
		}
	}
	return Item{}, false
}

// Normalize drops absent lines (qty <= 0) from server entries and rejects
// carts that list a product twice.
func Normalize(entries []types.CartEntry) ([]types.CartEntry, error) {
	out := make([]types.CartEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.ProductID]; dup {
			return nil, pkgerrors.New(
				pkgerrors.CodeDataIntegrity,
				fmt.Sprintf("cart lists product %q more than once", entry.ProductID),
			).WithDetails(map[string]any{"productId": entry.ProductID})
		}
		seen[entry.ProductID] = struct{}{}
		if entry.Qty <= 0 {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
