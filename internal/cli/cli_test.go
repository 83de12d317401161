package cli

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/session"
)

const racquetID = "BW0jAAeDJmlZCF8i"

type testEnv struct {
	baseURL string
	store   *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		Server: config.ServerConfig{
			BasePath:       "/api/v1",
			DefaultBalance: decimal.NewFromInt(5000),
			SeedCatalog:    true,
		},
		DB: config.DBConfig{
			Driver:       config.DBDriverSQLite,
			DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
			MaxOpenConns: 1,
		},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "storefront", ExpirationMinutes: 60},
		Password: config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	}
	app, err := devserver.New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)

	return &testEnv{baseURL: srv.URL + "/api/v1", store: session.NewMemoryStore(session.Session{})}
}

func (e *testEnv) factory(ctx context.Context, _ *RootOptions, notifier notify.Notifier) (*Runtime, error) {
	holder, err := session.NewHolder(ctx, e.store)
	if err != nil {
		return nil, err
	}
	client, err := backend.NewClient(e.baseURL)
	if err != nil {
		return nil, err
	}
	app, err := storefront.New(storefront.Params{Backend: client, Holder: holder, Notifier: notifier})
	if err != nil {
		return nil, err
	}
	return &Runtime{App: app}, nil
}

func execute(t *testing.T, factory RuntimeFactory, args ...string) (string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(factory)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String() + stderr.String(), ExitCode(err)
}

func executeJSON(t *testing.T, factory RuntimeFactory, args ...string) (Response, int) {
	t.Helper()
	out, code := execute(t, factory, append([]string{"--format", "json"}, args...)...)
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, code
}

// decodeData re-decodes the generic data payload into dst.
func decodeData(t *testing.T, resp Response, dst any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, path := range [][]string{
		{"products"}, {"search"}, {"cart"}, {"cart", "add"}, {"cart", "inc"}, {"cart", "dec"}, {"cart", "rm"},
		{"address"}, {"address", "ls"}, {"address", "add"}, {"address", "rm"}, {"address", "select"},
		{"checkout"}, {"login"}, {"register"}, {"logout"}, {"whoami"},
	} {
		t.Run(strings.Join(path, "_"), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, FormatText, format.DefValue)
	require.NotNil(t, cmd.PersistentFlags().Lookup("profile"))
	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestInvalidFormatIsCommandError(t *testing.T) {
	_, code := execute(t, nil, "--format", "xml", "whoami")
	assert.Equal(t, ExitCommandError, code)
}

func TestProductsJSON(t *testing.T) {
	env := newTestEnv(t)
	resp, code := executeJSON(t, env.factory, "products")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok", resp.Status)

	var products []map[string]any
	decodeData(t, resp, &products)
	assert.Len(t, products, 10)
	assert.Equal(t, racquetID, products[0]["_id"])
}

func TestSearchWithoutMatchesIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	out, code := execute(t, env.factory, "search", "no-such-product")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No products found")
}

func TestCartMutationRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	resp, code := executeJSON(t, env.factory, "cart", "add", racquetID)
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHENTICATED", resp.Error.Reason)
}

func TestCheckoutWithoutLoginPointsToLogin(t *testing.T) {
	env := newTestEnv(t)
	out, code := execute(t, env.factory, "checkout")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "You must be logged in to access checkout page")
	assert.Equal(t, 1, strings.Count(out, "You must be logged in"))
}

func TestShoppingFlow(t *testing.T) {
	env := newTestEnv(t)

	_, code := execute(t, env.factory, "register", "shopper1", "-p", "secret123")
	require.Equal(t, ExitSuccess, code)

	out, code := execute(t, env.factory, "login", "shopper1", "-p", "secret123")
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "Logged in successfully")

	_, code = execute(t, env.factory, "cart", "add", racquetID)
	require.Equal(t, ExitSuccess, code)

	resp, code := executeJSON(t, env.factory, "cart", "add", racquetID)
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "DUPLICATE", resp.Error.Reason)

	resp, code = executeJSON(t, env.factory, "cart", "inc", racquetID)
	require.Equal(t, ExitSuccess, code)
	var cart cartView
	decodeData(t, resp, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
	assert.True(t, cart.Summary.Total.Equal(decimal.NewFromInt(200)))

	resp, code = executeJSON(t, env.factory, "checkout")
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "NO_ADDRESS", resp.Error.Reason)

	resp, code = executeJSON(t, env.factory, "address", "add", "221B Baker Street, London NW1 6XE")
	require.Equal(t, ExitSuccess, code)
	var addresses []addressView
	decodeData(t, resp, &addresses)
	require.Len(t, addresses, 1)

	resp, code = executeJSON(t, env.factory, "checkout")
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "NO_ADDRESS_SELECTED", resp.Error.Reason)

	_, code = execute(t, env.factory, "address", "select", addresses[0].ID)
	require.Equal(t, ExitSuccess, code)

	resp, code = executeJSON(t, env.factory, "checkout")
	require.Equal(t, ExitSuccess, code)
	var outcome checkoutView
	decodeData(t, resp, &outcome)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.Balance.Equal(decimal.NewFromInt(4800)))
	assert.Equal(t, "thanks", outcome.Next)

	resp, code = executeJSON(t, env.factory, "cart")
	require.Equal(t, ExitSuccess, code)
	decodeData(t, resp, &cart)
	assert.Empty(t, cart.Items)

	resp, code = executeJSON(t, env.factory, "whoami")
	require.Equal(t, ExitSuccess, code)
	var who whoamiView
	decodeData(t, resp, &who)
	assert.True(t, who.Authenticated)
	assert.Equal(t, "shopper1", who.Username)
	assert.True(t, who.Balance.Equal(decimal.NewFromInt(4800)))

	out, code = execute(t, env.factory, "logout")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Logged out")
	assert.True(t, env.store.Saves() > 0)
}

func TestUnreachableBackendIsCommandError(t *testing.T) {
	srv := httptest.NewServer(nil)
	baseURL := srv.URL
	srv.Close()

	env := &testEnv{baseURL: baseURL, store: session.NewMemoryStore(session.Session{})}
	out, code := execute(t, env.factory, "products")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Check that the backend is running")
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitCommandError, ExitCode(fmt.Errorf("plain")))
	assert.Equal(t, ExitFailure, ExitCode(&ExitError{Code: ExitFailure, Err: fmt.Errorf("x")}))
	assert.False(t, Reported(fmt.Errorf("plain")))
}
