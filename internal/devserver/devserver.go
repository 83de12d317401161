// Package devserver assembles the development backend from configuration.
package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/shop"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// App owns every resource the backend opened.
type App struct {
	Handler http.Handler
	Shop    *shop.Service
	DB      *db.Client
	Redis   *redis.Client
}

// New opens the database, migrates and seeds it, connects redis when
// configured and builds the router.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (_ *App, err error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}

	app := &App{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, app.Close())
		}
	}()

	app.DB, err = db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err = migrate.MaybeRunDev(ctx, cfg, logg, app.DB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	app.Shop, err = shop.NewService(shop.ServiceParams{
		DB:             app.DB,
		JWT:            cfg.JWT,
		Password:       cfg.Password,
		DefaultBalance: cfg.Server.DefaultBalance,
		Logger:         logg,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Server.SeedCatalog {
		if err = app.Shop.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	if cfg.Redis.Enabled() {
		app.Redis, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.Handler = routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Shop:     app.Shop,
		DB:       app.DB,
		Redis:    app.Redis,
		Gatherer: reg,
		Metrics:  metrics.NewHTTPMetrics(reg),
	})
	return app, nil
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = multierr.Append(err, a.Redis.Close())
	}
	if a.DB != nil {
		err = multierr.Append(err, a.DB.Close())
	}
	return err
}
