package types

// Address is a saved shipping address. The wire names the text field
// "address".
type Address struct {
	ID   string `json:"_id" validate:"required"`
	Text string `json:"address" validate:"required"`
}

// AddressRequest is the body of POST /user/addresses.
type AddressRequest struct {
	Address string `json:"address" validate:"required,min=20,max=128"`
}

// FindAddress reports whether id is present in addresses.
func FindAddress(addresses []Address, id string) (Address, bool) {
	for _, a := range addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}
