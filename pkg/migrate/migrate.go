// Package migrate brings the development backend schema up to date.
package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type migrator interface {
	AutoMigrate(ctx context.Context, models ...any) error
}

// Run migrates every model the backend persists.
func Run(ctx context.Context, client migrator, logg *logger.Logger) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	all := models.All()
	if err := client.AutoMigrate(ctx, all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "models", len(all)), "schema migrated")
	}
	return nil
}

// MaybeRunDev migrates when the server runs in dev mode or on sqlite, where
// there is no separate migration step.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() && !strings.EqualFold(cfg.DB.Driver, config.DBDriverSQLite) {
		return nil
	}
	return Run(ctx, client, logg)
}
