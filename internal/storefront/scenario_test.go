package storefront

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/backend"
	"github.com/angelmondragon/storefront/internal/devserver"
	"github.com/angelmondragon/storefront/internal/notify"
	"github.com/angelmondragon/storefront/internal/shop"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/session"
)

func TestCheckoutScenarioAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		Server: config.ServerConfig{
			BasePath:       "/api/v1",
			DefaultBalance: decimal.NewFromInt(200),
		},
		DB: config.DBConfig{
			Driver:       config.DBDriverSQLite,
			DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
			MaxOpenConns: 1,
		},
		JWT:      config.JWTConfig{Secret: "scenario-secret", Issuer: "storefront", ExpirationMinutes: 60},
		Password: config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	}
	server, err := devserver.New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	repo := shop.NewRepository(server.DB.DB())
	require.NoError(t, repo.UpsertProducts(ctx, []models.Product{
		{ID: "p1", Name: "Racquet", Category: "Sports", Cost: decimal.NewFromInt(100)},
		{ID: "p2", Name: "Shoes", Category: "Fashion", Cost: decimal.NewFromInt(50)},
	}))

	srv := httptest.NewServer(server.Handler)
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(srv.URL + "/api/v1")
	require.NoError(t, err)
	store := session.NewMemoryStore(session.Session{})
	holder, err := session.NewHolder(ctx, store)
	require.NoError(t, err)
	rec := &notify.Recorder{}
	app, err := New(Params{Backend: client, Holder: holder, Notifier: rec})
	require.NoError(t, err)

	require.NoError(t, app.Register(ctx, "scenario", "secret1", "secret1"))
	_, err = app.Login(ctx, "scenario", "secret1")
	require.NoError(t, err)
	require.NoError(t, app.Load(ctx))
	require.Len(t, app.Products(), 2)

	require.NoError(t, app.AddToCart(ctx, "p1"))
	require.NoError(t, app.Increment(ctx, "p1"))
	assert.True(t, app.Summary().Total.Equal(decimal.NewFromInt(200)))

	require.NoError(t, app.Decrement(ctx, "p1"))
	assert.True(t, app.Summary().Total.Equal(decimal.NewFromInt(100)))

	setBalance := func(v int64) {
		_, err := holder.Update(ctx, func(s *session.Session) error {
			s.Balance = decimal.NewFromInt(v)
			return nil
		})
		require.NoError(t, err)
	}

	setBalance(50)
	_, err = app.Checkout(ctx)
	require.Error(t, err)
	assert.Equal(t, enums.RejectionReasonInsufficientBalance, pkgerrors.ReasonOf(err))
	assert.True(t, app.Session().Balance.Equal(decimal.NewFromInt(50)))

	user, err := repo.FindUserByUsername(ctx, "scenario")
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(200)), "no debit on a refused checkout")

	require.NoError(t, app.Increment(ctx, "p1"))
	assert.True(t, app.Summary().Total.Equal(decimal.NewFromInt(200)))
	setBalance(200)

	list, err := app.AddAddress(ctx, "742 Evergreen Terrace, Springfield")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, app.SelectAddress(ctx, list[0].ID))

	out, err := app.Checkout(ctx)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, enums.DestinationThanks, out.Next)
	assert.True(t, app.Session().Balance.IsZero())

	user, err = repo.FindUserByUsername(ctx, "scenario")
	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero())

	require.NoError(t, app.Load(ctx))
	assert.Empty(t, app.Items())
}
