package notify

import (
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Operation names the user action an error came from.
type Operation string

const (
	OpProducts      Operation = "products"
	OpSearch        Operation = "search"
	OpCart          Operation = "cart"
	OpAddresses     Operation = "addresses"
	OpAddAddress    Operation = "add_address"
	OpDeleteAddress Operation = "delete_address"
	OpCheckout      Operation = "checkout"
	OpLogin         Operation = "login"
	OpRegister      Operation = "register"
)

const connectivityHint = " Check that the backend is running, reachable and returns valid JSON."

var connectivity = map[Operation]string{
	OpProducts:      "Could not fetch products.",
	OpSearch:        "Could not fetch products.",
	OpCart:          "Could not fetch cart details.",
	OpAddresses:     "Could not fetch addresses.",
	OpAddAddress:    "Could not add this address.",
	OpDeleteAddress: "Could not delete this address.",
	OpCheckout:      "Could not place the order.",
}

// ConnectivityMessage is shown when op could not reach the backend.
func ConnectivityMessage(op Operation) string {
	if msg, ok := connectivity[op]; ok {
		return msg + connectivityHint
	}
	return "Something went wrong." + connectivityHint
}

// IntegrityMessage is shown when op got data from the backend that does not
// fit together, such as a cart line for a product missing from the catalog.
func IntegrityMessage(op Operation, detail string) string {
	base, ok := connectivity[op]
	if !ok {
		base = "Something went wrong."
	}
	msg := base + " The backend returned inconsistent data"
	if detail != "" {
		msg += ": " + detail
	}
	return msg + "."
}

// FromError picks the message and severity for a failed operation. Typed
// errors keep their own message; the severity comes from the error code.
func FromError(op Operation, err error) Notification {
	if err == nil {
		return Notification{}
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return Error(ConnectivityMessage(op))
	}
	severity := pkgerrors.MetadataFor(typed.Code()).Severity
	switch typed.Code() {
	case pkgerrors.CodeTransport:
		return Notification{Severity: severity, Message: ConnectivityMessage(op)}
	case pkgerrors.CodeDataIntegrity:
		return Notification{Severity: severity, Message: IntegrityMessage(op, typed.Message())}
	}
	msg := typed.Message()
	if msg == "" {
		msg = pkgerrors.MetadataFor(typed.Code()).PublicMessage
	}
	return Notification{Severity: severity, Message: msg}
}
