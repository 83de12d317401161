package enums

import "fmt"

// RejectionReason identifies why a cart mutation or checkout attempt was refused.
type RejectionReason string

const (
	RejectionReasonUnauthenticated     RejectionReason = "UNAUTHENTICATED"
	RejectionReasonDuplicate           RejectionReason = "DUPLICATE"
	RejectionReasonProductNotFound     RejectionReason = "PRODUCT_NOT_FOUND"
	RejectionReasonNetworkUnavailable  RejectionReason = "NETWORK_UNAVAILABLE"
	RejectionReasonServerError         RejectionReason = "SERVER_ERROR"
	RejectionReasonInsufficientBalance RejectionReason = "INSUFFICIENT_BALANCE"
	RejectionReasonNoAddress           RejectionReason = "NO_ADDRESS"
	RejectionReasonNoAddressSelected   RejectionReason = "NO_ADDRESS_SELECTED"
)

var validRejectionReasons = []RejectionReason{
	RejectionReasonUnauthenticated,
	RejectionReasonDuplicate,
	RejectionReasonProductNotFound,
	RejectionReasonNetworkUnavailable,
	RejectionReasonServerError,
	RejectionReasonInsufficientBalance,
	RejectionReasonNoAddress,
	RejectionReasonNoAddressSelected,
}

// String implements fmt.Stringer.
func (r RejectionReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RejectionReason.
func (r RejectionReason) IsValid() bool {
	for _, candidate := range validRejectionReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRejectionReason converts raw input into a RejectionReason.
func ParseRejectionReason(value string) (RejectionReason, error) {
	for _, candidate := range validRejectionReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rejection reason %q", value)
}
