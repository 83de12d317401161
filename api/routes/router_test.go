package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/shop"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/types"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		App:    config.AppConfig{Env: config.AppEnvDev},
		Server: config.ServerConfig{BasePath: "/api/v1"},
		JWT:    config.JWTConfig{Secret: "router-secret", Issuer: "storefront", ExpirationMinutes: 60},
	}
	client, err := db.New(ctx, config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.AutoMigrate(ctx, models.All()...))

	svc, err := shop.NewService(shop.ServiceParams{
		DB:             client,
		JWT:            cfg.JWT,
		Password:       config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		DefaultBalance: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx))

	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.Nop(),
		Shop:     svc,
		DB:       client,
		Gatherer: reg,
		Metrics:  metrics.NewHTTPMetrics(reg),
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	creds := map[string]string{"username": "shopper", "password": "secret123"}
	rec := do(t, h, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(300)))
	return resp.Token
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db":"ok"`)

	do(t, h, http.MethodGet, "/api/v1/products", "", nil)
	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/products")
}

func TestProductsAndSearch(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 10)
	assert.Contains(t, products[0], "_id")

	rec = do(t, h, http.MethodGet, "/api/v1/products/search?value=yonex", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/products/search?value=zzzz", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesNeedBearerToken(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/v1/cart", "/api/v1/user/addresses"} {
		rec := do(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		resp := decodeError(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Protected route, Oauth2 Bearer token not found", resp.Message)
	}

	rec := do(t, h, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	h := newTestRouter(t)
	login(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "nobody1", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username does not exist", decodeError(t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "shopper", "password": "wrongpass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password is incorrect", decodeError(t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "shopper", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartAddressCheckoutFlow(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h)

	rec := do(t, h, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/cart", token, types.CartItemRequest{ProductID: "missing", Qty: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/cart", token, types.CartItemRequest{ProductID: "BW0jAAeDJmlZCF8i", Qty: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []types.CartEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []types.CartEntry{{ProductID: "BW0jAAeDJmlZCF8i", Qty: 2}}, entries)

	rec = do(t, h, http.MethodPost, "/api/v1/user/addresses", token, types.AddressRequest{Address: "too short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/user/addresses", token, types.AddressRequest{Address: "12 Grimmauld Place, London"})
	require.Equal(t, http.StatusOK, rec.Code)
	var addresses []types.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addresses))
	require.Len(t, addresses, 1)

	rec = do(t, h, http.MethodPost, "/api/v1/cart/checkout", token, types.CheckoutRequest{AddressID: addresses[0].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/cart/checkout", token, types.CheckoutRequest{AddressID: addresses[0].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decodeError(t, rec).Message)

	rec = do(t, h, http.MethodDelete, "/api/v1/user/addresses/"+addresses[0].ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/v1/user/addresses/"+addresses[0].ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeError(t, rec).Success)
}
