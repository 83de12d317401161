// Package checkout validates and places orders for the current cart.
package checkout

import (
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	MsgInsufficientBalance = "You do not have enough balance in your wallet for this purchase"
	MsgNoAddress           = "Please add a new address before proceeding."
	MsgNoAddressSelected   = "Please select one shipping address to proceed"
	MsgOrderPlaced         = "Order placed successfully"
)

// Context is the address book state a checkout is judged against. The wallet
// balance is not part of it; it is read from the session.
type Context struct {
	Addresses         []types.Address
	SelectedAddressID string
}

// Validate checks, in order, the balance, the presence of an address and the
// selection. The first failing check is returned.
func Validate(cartTotal, balance decimal.Decimal, cctx Context) error {
	if cartTotal.GreaterThan(balance) {
		return pkgerrors.Reject(enums.RejectionReasonInsufficientBalance, MsgInsufficientBalance).
			WithDetails(map[string]string{"total": cartTotal.String(), "balance": balance.String()})
	}
	if len(cctx.Addresses) == 0 {
		return pkgerrors.Reject(enums.RejectionReasonNoAddress, MsgNoAddress)
	}
	if cctx.SelectedAddressID == "" {
		return pkgerrors.Reject(enums.RejectionReasonNoAddressSelected, MsgNoAddressSelected)
	}
	// a selection that no longer exists counts as none
	if _, ok := types.FindAddress(cctx.Addresses, cctx.SelectedAddressID); !ok {
		return pkgerrors.Reject(enums.RejectionReasonNoAddressSelected, MsgNoAddressSelected).
			WithDetails(map[string]string{"address_id": cctx.SelectedAddressID})
	}
	return nil
}
