package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://shop.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)
	_, err = NewClient("not a url")
	assert.Error(t, err)
}

func TestListProductsDecodesCatalog(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "http://shop.test/api/v1/products", req.URL.String())
		assert.Empty(t, req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `[{"_id":"p1","name":"Bag","category":"Fashion","cost":100,"rating":5,"image":"https://img.test/p1.png"}]`), nil
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Cost.Equal(decimal.NewFromInt(100)))
}

func TestSearchEncodesQueryAndMaps404(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v1/products/search", req.URL.Path)
		assert.Equal(t, "tan bag", req.URL.Query().Get("value"))
		return jsonResponse(http.StatusNotFound, `[]`), nil
	})

	_, err := client.SearchProducts(context.Background(), "tan bag")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSetCartItemSendsAbsoluteQuantityWithBearer(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "p1", body["productId"])
		assert.EqualValues(t, 3, body["qty"])
		return jsonResponse(http.StatusOK, `[{"productId":"p1","qty":3}]`), nil
	})

	entries, err := client.SetCartItem(context.Background(), "tok", "p1", 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Qty)
}

func TestAuthenticatedCallWithoutTokenSkipsNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	_, err := client.GetCart(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
	assert.False(t, called)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusBadRequest, pkgerrors.CodeRejected},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusInternalServerError, pkgerrors.CodeServer},
		{http.StatusBadGateway, pkgerrors.CodeServer},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(tc.status, `{"success":false,"message":"Product doesn't exist"}`), nil
		})
		_, err := client.SetCartItem(context.Background(), "tok", "p1", 1)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "status %d", tc.status)
		assert.Equal(t, tc.code, typed.Code(), "status %d", tc.status)
		assert.Equal(t, "Product doesn't exist", typed.Message())
	}
}

func TestStatusWithoutMessageFallsBack(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `<html>oops</html>`), nil
	})
	_, err := client.ListProducts(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Contains(t, typed.Message(), "status 500")
}

func TestTransportFailureIsTransportError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := client.ListProducts(context.Background())
	assert.Equal(t, pkgerrors.CodeTransport, pkgerrors.CodeOf(err))
}

func TestCancelledContextKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.SearchProducts(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, pkgerrors.CodeTransport, pkgerrors.CodeOf(err))
}

func TestMalformedResponseIsDataIntegrity(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"oops"`,
		"missing id":       `[{"name":"Bag","cost":1}]`,
		"negative cost":    `[{"_id":"p1","name":"Bag","cost":-1}]`,
		"rating too large": `[{"_id":"p1","name":"Bag","cost":1,"rating":9}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, body), nil
			})
			_, err := client.ListProducts(context.Background())
			assert.Equal(t, pkgerrors.CodeDataIntegrity, pkgerrors.CodeOf(err))
		})
	}
}

func TestCheckoutDecodesSuccessFlag(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "a1", body["addressId"])
		return jsonResponse(http.StatusOK, `{"success":false}`), nil
	})
	resp, err := client.Checkout(context.Background(), "tok", "a1")
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestDeleteAddressEscapesID(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/api/v1/user/addresses/a%2F1", req.URL.EscapedPath())
		return jsonResponse(http.StatusOK, `[]`), nil
	})
	addrs, err := client.DeleteAddress(context.Background(), "tok", "a/1")
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestLoginDecodesSession(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v1/auth/login", req.URL.Path)
		return jsonResponse(http.StatusCreated, `{"success":true,"token":"tok","username":"crio-user","balance":5000}`), nil
	})
	resp, err := client.Login(context.Background(), "crio-user", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(5000)))
}

func TestMetricsRecordFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	client, err := NewClient("http://shop.test/api/v1",
		WithMetrics(m),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, `{"success":false,"message":"down"}`), nil
		})}),
	)
	require.NoError(t, err)
	_, _ = client.ListProducts(context.Background())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "storefront_backend_request_failures_total" {
			found = mf.GetMetric()[0].GetCounter().GetValue() == 1
		}
	}
	assert.True(t, found, "expected one recorded failure")
}
