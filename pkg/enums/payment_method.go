package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how an order will be settled. Payment processing itself is
// out of scope; the value is only recorded on the order.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodCard   PaymentMethod = "card"
)

var paymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodStripe: {},
	PaymentMethodCard:   {},
}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool {
	_, ok := paymentMethods[p]
	return ok
}

// ParsePaymentMethod accepts any casing and surrounding whitespace.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	if !method.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return method, nil
}
