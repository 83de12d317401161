package shop

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedCatalog []byte

// SeedProducts returns the built-in development catalog.
func SeedProducts() ([]types.Product, error) {
	var products []types.Product
	if err := yaml.Unmarshal(seedCatalog, &products); err != nil {
		return nil, fmt.Errorf("decoding seed catalog: %w", err)
	}
	return products, nil
}

// Seed upserts the built-in catalog.
func (s *Service) Seed(ctx context.Context) error {
	return SeedCatalog(ctx, s.repo, s.logg)
}

// SeedCatalog upserts the built-in catalog through repo. Products are listed
// in the order the seed file declares them.
func SeedCatalog(ctx context.Context, repo *Repository, logg *logger.Logger) error {
	products, err := SeedProducts()
	if err != nil {
		return err
	}
	rows := make([]models.Product, 0, len(products))
	for i, p := range products {
		row := toProductModel(p)
		row.Position = i
		rows = append(rows, row)
	}
	if err := repo.UpsertProducts(ctx, rows); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "products", len(rows)), "catalog seeded")
	}
	return nil
}
