package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/backend"
	"github.com/angelmondragon/storefront/internal/notify"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/session"
)

// NewRuntimeFactory opens storefronts against the configured backend and
// session store. The --profile flag overrides the configured profile.
func NewRuntimeFactory(cfg *config.Config, logg *logger.Logger) RuntimeFactory {
	return func(ctx context.Context, opts *RootOptions, notifier notify.Notifier) (*Runtime, error) {
		sessCfg := cfg.Session
		if opts.Profile != "" {
			sessCfg.Profile = opts.Profile
		}

		var closers []func() error
		closeAll := func() error {
			var err error
			for i := len(closers) - 1; i >= 0; i-- {
				err = multierr.Append(err, closers[i]())
			}
			return err
		}

		store, closeStore, err := OpenSessionStore(ctx, sessCfg, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		if closeStore != nil {
			closers = append(closers, closeStore)
		}

		holder, err := session.NewHolder(ctx, store)
		if err != nil {
			return nil, multierr.Append(err, closeAll())
		}

		clientMetrics := metrics.NewClientMetrics(prometheus.NewRegistry())
		client, err := backend.NewFromConfig(cfg.Backend,
			backend.WithLogger(logg),
			backend.WithMetrics(clientMetrics),
		)
		if err != nil {
			return nil, multierr.Append(err, closeAll())
		}

		app, err := storefront.New(storefront.Params{
			Backend:  client,
			Holder:   holder,
			Notifier: notifier,
			Logger:   logg,
			Metrics:  clientMetrics,
			Debounce: cfg.Search.Debounce,
		})
		if err != nil {
			return nil, multierr.Append(err, closeAll())
		}
		return &Runtime{App: app, Close: closeAll}, nil
	}
}

// OpenSessionStore returns the store selected by cfg and, for redis, a func
// that closes the connection.
func OpenSessionStore(ctx context.Context, cfg config.SessionConfig, redisCfg config.RedisConfig, logg *logger.Logger) (session.Store, func() error, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(session.Session{}), nil, nil
	case config.SessionBackendRedis:
		client, err := redis.New(ctx, redisCfg, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis session store: %w", err)
		}
		profile := cfg.Profile
		if profile == "" {
			profile = "default"
		}
		return session.NewRedisStore(client, client.SessionKey(profile), redisCfg.SessionTTL), client.Close, nil
	case config.SessionBackendFile, "":
		return session.NewFileStore(cfg.FilePath()), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.Backend)
	}
}
