package types

// CartEntry is one server-held cart line. A qty of zero or less means the
// line is absent.
type CartEntry struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty"`
}

// CartItemRequest is the body of POST /cart. Qty is the absolute target.
type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty"`
}

type CheckoutRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

type CheckoutResponse struct {
	Success bool `json:"success"`
}
