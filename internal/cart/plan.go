package cart

import (
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	msgLoginToAdd    = "Login to add an item to the Cart"
	msgAlreadyInCart = "Item already in cart. Use the cart sidebar to update quantity or remove item."
)

// Intent is a requested quantity change. Qty is the absolute target.
type Intent struct {
	ProductID string
	Qty       int
	Mode      enums.QuantityMode
}

// Add is the catalog's "add to cart": one unit, duplicates refused.
func Add(productID string) Intent {
	return Intent{ProductID: productID, Qty: 1, Mode: enums.QuantityModeStrict}
}

func Increment(item Item) Intent {
	return Intent{ProductID: item.ProductID(), Qty: item.Qty() + 1, Mode: enums.QuantityModeFree}
}

// Decrement lowers the line by one; reaching zero removes it.
func Decrement(item Item) Intent {
	return Intent{ProductID: item.ProductID(), Qty: item.Qty() - 1, Mode: enums.QuantityModeFree}
}

func Remove(item Item) Intent {
	return Intent{ProductID: item.ProductID(), Qty: 0, Mode: enums.QuantityModeFree}
}

// State is what a plan is decided against.
type State struct {
	Authenticated bool
	Items         []Item
}

// Decision is either a rejection or a single backend write.
type Decision struct {
	Err       *pkgerrors.Error
	ProductID string
	Qty       int
}

func (d Decision) Rejected() bool {
	return d.Err != nil
}

// Plan decides, without side effects, whether intent may be sent.
func Plan(state State, intent Intent) Decision {
	if !state.Authenticated {
		return Decision{Err: pkgerrors.Reject(enums.RejectionReasonUnauthenticated, msgLoginToAdd)}
	}
	if intent.ProductID == "" {
		return Decision{Err: pkgerrors.New(pkgerrors.CodeValidation, "product id is required")}
	}
	if intent.Mode == enums.QuantityModeStrict {
		if _, exists := Find(state.Items, intent.ProductID); exists {
			return Decision{Err: pkgerrors.Reject(enums.RejectionReasonDuplicate, msgAlreadyInCart)}
		}
	}
	qty := intent.Qty
	if qty < 0 {
		qty = 0
	}
	return Decision{ProductID: intent.ProductID, Qty: qty}
}
