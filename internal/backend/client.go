// Package backend is the typed HTTP client for the storefront API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/validate"
	"github.com/go-playground/validator/v10"
)

const (
	defaultTimeout         = 10 * time.Second
	errorBodyLimit   int64 = 4 << 10
	successBodyLimit int64 = 8 << 20
)

// Endpoint names label logs and metrics.
const (
	EndpointListProducts   = "products.list"
	EndpointSearchProducts = "products.search"
	EndpointGetCart        = "cart.get"
	EndpointSetCartItem    = "cart.set"
	EndpointListAddresses  = "addresses.list"
	EndpointAddAddress     = "addresses.add"
	EndpointDeleteAddress  = "addresses.delete"
	EndpointCheckout       = "cart.checkout"
	EndpointLogin          = "auth.login"
	EndpointRegister       = "auth.register"
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client talks to the catalog, cart, address and order backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logg       *logger.Logger
	metrics    *metrics.ClientMetrics
	validate   *validator.Validate
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) { c.logg = logg }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = strings.TrimSpace(ua) }
}

// NewClient builds a client rooted at baseURL, e.g. http://host:8082/api/v1.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   validate.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewFromConfig builds a client from the backend section of the config.
func NewFromConfig(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithUserAgent(cfg.UserAgent),
	}
	return NewClient(cfg.BaseURL, append(base, opts...)...)
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	token    string
	auth     bool
	body     any
}

// send performs the request and returns the raw success body.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	if cl.auth && strings.TrimSpace(cl.token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+cl.endpoint+" request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+cl.endpoint+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logCtx := ctx
	if c.logg != nil {
		logCtx = c.logg.WithFields(ctx, map[string]any{"endpoint": cl.endpoint, "method": cl.method})
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveRequest(cl.endpoint, time.Since(started))
	if err != nil {
		c.metrics.IncRequestFailure(cl.endpoint, string(pkgerrors.CodeTransport))
		if c.logg != nil {
			c.logg.Debug(logCtx, "backend request failed without response")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, cl.endpoint+" request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(cl.endpoint, resp)
		c.metrics.IncRequestFailure(cl.endpoint, string(apiErr.Code()))
		if c.logg != nil {
			c.logg.Debug(c.logg.WithField(logCtx, "status", resp.StatusCode), "backend request rejected")
		}
		return nil, apiErr
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, successBodyLimit))
	if err != nil {
		c.metrics.IncRequestFailure(cl.endpoint, string(pkgerrors.CodeTransport))
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "read "+cl.endpoint+" response")
	}
	if c.logg != nil {
		c.logg.Debug(c.logg.WithField(logCtx, "status", resp.StatusCode), "backend request completed")
	}
	return raw, nil
}

// statusError maps a non-2xx response onto the error taxonomy, carrying the
// backend's message when it sent one.
func statusError(endpoint string, resp *http.Response) *pkgerrors.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	message := backendMessage(raw)
	if message == "" {
		message = fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode)
	}

	var code pkgerrors.Code
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		code = pkgerrors.CodeUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		code = pkgerrors.CodeRateLimit
	case resp.StatusCode >= 500:
		code = pkgerrors.CodeServer
	default:
		code = pkgerrors.CodeRejected
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	})
}

func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

// decode parses and validates a success body. Shape violations are data
// integrity faults: the backend answered, but not with what it promised.
func decode[T any](c *Client, endpoint string, raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		c.metrics.IncRequestFailure(endpoint, string(pkgerrors.CodeDataIntegrity))
		return out, pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, "decode "+endpoint+" response")
	}
	if err := validate.Value(c.validate, out); err != nil {
		c.metrics.IncRequestFailure(endpoint, string(pkgerrors.CodeDataIntegrity))
		return out, pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, endpoint+" response failed validation")
	}
	return out, nil
}
