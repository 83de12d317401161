package enums

import "fmt"

// QuantityMode selects the duplicate policy applied to a cart quantity change.
// Strict is used by the catalog "add to cart" action and refuses to touch a line
// that already exists; Free is used by the cart's own +/- controls.
type QuantityMode string

const (
	QuantityModeStrict QuantityMode = "strict"
	QuantityModeFree   QuantityMode = "free"
)

var validQuantityModes = []QuantityMode{
	QuantityModeStrict,
	QuantityModeFree,
}

// String implements fmt.Stringer.
func (m QuantityMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known QuantityMode.
func (m QuantityMode) IsValid() bool {
	for _, candidate := range validQuantityModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseQuantityMode converts raw input into a QuantityMode.
func ParseQuantityMode(value string) (QuantityMode, error) {
	for _, candidate := range validQuantityModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quantity mode %q", value)
}
