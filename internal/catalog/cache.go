package catalog

import (
	"sync"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Cache holds the last fetched product list. Refresh and search replace it
// wholesale; it is never patched.
type Cache struct {
	mu       sync.RWMutex
	products []types.Product
	index    map[string]types.Product
}

func NewCache() *Cache {
	return &Cache{index: map[string]types.Product{}}
}

// Replace swaps in a new product list.
func (c *Cache) Replace(products []types.Product) {
	cp := append([]types.Product(nil), products...)
	idx := types.IndexProducts(cp)
	c.mu.Lock()
	c.products = cp
	c.index = idx
	c.mu.Unlock()
}

// Snapshot returns a copy of the cached products in fetch order.
func (c *Cache) Snapshot() []types.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Product(nil), c.products...)
}

func (c *Cache) Lookup(id string) (types.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.index[id]
	return p, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
