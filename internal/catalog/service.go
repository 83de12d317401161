// Package catalog fetches, searches and caches the product catalog.
package catalog

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Backend is the part of the storefront API the catalog reads.
type Backend interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	SearchProducts(ctx context.Context, text string) ([]types.Product, error)
}

// SearchResult is the outcome of a search. Found is false when the backend
// reported no matches; that is not an error.
type SearchResult struct {
	Query    string
	Products []types.Product
	Found    bool
}

type Service struct {
	backend Backend
	cache   *Cache
	logg    *logger.Logger
}

func NewService(backend Backend, cache *Cache, logg *logger.Logger) *Service {
	if cache == nil {
		cache = NewCache()
	}
	return &Service{backend: backend, cache: cache, logg: logg}
}

func (s *Service) Cache() *Cache {
	return s.cache
}

// Refresh fetches the full catalog and replaces the cache.
func (s *Service) Refresh(ctx context.Context) ([]types.Product, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Replace(products)
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "products", len(products)), "catalog refreshed")
	}
	return s.cache.Snapshot(), nil
}

// Search replaces the cache with the products matching text. Blank text
// reloads the full catalog.
func (s *Service) Search(ctx context.Context, text string) (SearchResult, error) {
	res, err := s.Find(ctx, text)
	if err != nil {
		return SearchResult{}, err
	}
	return s.Apply(res), nil
}

// Find runs a search without touching the cache.
func (s *Service) Find(ctx context.Context, text string) (SearchResult, error) {
	query := strings.TrimSpace(text)
	var (
		products []types.Product
		err      error
	)
	if query == "" {
		products, err = s.backend.ListProducts(ctx)
	} else {
		products, err = s.backend.SearchProducts(ctx, query)
	}
	if err != nil {
		if query != "" && pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return SearchResult{Query: query, Products: []types.Product{}}, nil
		}
		return SearchResult{}, err
	}
	return SearchResult{Query: query, Products: products, Found: len(products) > 0}, nil
}

// Apply makes a search result the cached catalog.
func (s *Service) Apply(res SearchResult) SearchResult {
	s.cache.Replace(res.Products)
	res.Products = s.cache.Snapshot()
	return res
}
