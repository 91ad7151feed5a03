package enums

import "fmt"

// ReceiptMethod records how the customer receives the order.
type ReceiptMethod string

const (
	ReceiptMethodDelivery ReceiptMethod = "DELIVERY"
	ReceiptMethodTakeOut  ReceiptMethod = "TAKE_OUT"
	ReceiptMethodTakeIn   ReceiptMethod = "TAKE_IN"
)

var validReceiptMethods = []ReceiptMethod{
	ReceiptMethodDelivery,
	ReceiptMethodTakeOut,
	ReceiptMethodTakeIn,
}

// String implements fmt.Stringer.
func (r ReceiptMethod) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReceiptMethod.
func (r ReceiptMethod) IsValid() bool {
	for _, candidate := range validReceiptMethods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReceiptMethod converts raw input into a ReceiptMethod.
func ParseReceiptMethod(value string) (ReceiptMethod, error) {
	for _, candidate := range validReceiptMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid receipt method %q", value)
}
