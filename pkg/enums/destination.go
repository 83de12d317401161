package enums

// Destination names the screen a completed operation asks the caller to move to.
type Destination string

const (
	DestinationNone     Destination = ""
	DestinationProducts Destination = "products"
	DestinationLogin    Destination = "login"
	DestinationCheckout Destination = "checkout"
	DestinationThanks   Destination = "thanks"
)

// String implements fmt.Stringer.
func (d Destination) String() string {
	return string(d)
}
