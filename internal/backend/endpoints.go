package backend

import (
	"context"
	"net/http"
	"net/url"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	raw, err := c.send(ctx, call{endpoint: EndpointListProducts, method: http.MethodGet, path: "/products"})
	if err != nil {
		return nil, err
	}
	return decode[[]types.Product](c, EndpointListProducts, raw)
}

// SearchProducts returns products matching text. The backend answers 404 when
// nothing matches; callers see that as a CodeNotFound error.
func (c *Client) SearchProducts(ctx context.Context, text string) ([]types.Product, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointSearchProducts,
		method:   http.MethodGet,
		path:     "/products/search",
		query:    url.Values{"value": []string{text}},
	})
	if err != nil {
		return nil, err
	}
	return decode[[]types.Product](c, EndpointSearchProducts, raw)
}

// GetCart returns the raw cart entries of the token's owner.
func (c *Client) GetCart(ctx context.Context, token string) ([]types.CartEntry, error) {
	raw, err := c.send(ctx, call{endpoint: EndpointGetCart, method: http.MethodGet, path: "/cart", token: token, auth: true})
	if err != nil {
		return nil, err
	}
	return decode[[]types.CartEntry](c, EndpointGetCart, raw)
}

// SetCartItem sets the absolute quantity of a product and returns the full
// resulting cart. qty <= 0 removes the line.
func (c *Client) SetCartItem(ctx context.Context, token, productID string, qty int) ([]types.CartEntry, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointSetCartItem,
		method:   http.MethodPost,
		path:     "/cart",
		token:    token,
		auth:     true,
		body:     types.CartItemRequest{ProductID: productID, Qty: qty},
	})
	if err != nil {
		return nil, err
	}
	return decode[[]types.CartEntry](c, EndpointSetCartItem, raw)
}

func (c *Client) ListAddresses(ctx context.Context, token string) ([]types.Address, error) {
	raw, err := c.send(ctx, call{endpoint: EndpointListAddresses, method: http.MethodGet, path: "/user/addresses", token: token, auth: true})
	if err != nil {
		return nil, err
	}
	return decode[[]types.Address](c, EndpointListAddresses, raw)
}

// AddAddress saves a new address and returns the full list.
func (c *Client) AddAddress(ctx context.Context, token, text string) ([]types.Address, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointAddAddress,
		method:   http.MethodPost,
		path:     "/user/addresses",
		token:    token,
		auth:     true,
		body:     types.AddressRequest{Address: text},
	})
	if err != nil {
		return nil, err
	}
	return decode[[]types.Address](c, EndpointAddAddress, raw)
}

// DeleteAddress removes an address and returns the full list.
func (c *Client) DeleteAddress(ctx context.Context, token, id string) ([]types.Address, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	raw, err := c.send(ctx, call{
		endpoint: EndpointDeleteAddress,
		method:   http.MethodDelete,
		path:     "/user/addresses/" + url.PathEscape(id),
		token:    token,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return decode[[]types.Address](c, EndpointDeleteAddress, raw)
}

// Checkout places the order for the cart, shipping to addressID.
func (c *Client) Checkout(ctx context.Context, token, addressID string) (types.CheckoutResponse, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointCheckout,
		method:   http.MethodPost,
		path:     "/cart/checkout",
		token:    token,
		auth:     true,
		body:     types.CheckoutRequest{AddressID: addressID},
	})
	if err != nil {
		return types.CheckoutResponse{}, err
	}
	return decode[types.CheckoutResponse](c, EndpointCheckout, raw)
}

func (c *Client) Login(ctx context.Context, username, password string) (types.LoginResponse, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointLogin,
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     types.LoginRequest{Username: username, Password: password},
	})
	if err != nil {
		return types.LoginResponse{}, err
	}
	return decode[types.LoginResponse](c, EndpointLogin, raw)
}

func (c *Client) Register(ctx context.Context, username, password string) (types.RegisterResponse, error) {
	raw, err := c.send(ctx, call{
		endpoint: EndpointRegister,
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     types.RegisterRequest{Username: username, Password: password},
	})
	if err != nil {
		return types.RegisterResponse{}, err
	}
	return decode[types.RegisterResponse](c, EndpointRegister, raw)
}
