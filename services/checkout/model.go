package checkout

import (
	"time"

	"github.com/pixshop/storefront/services/checkoutapi"
)

type Step string

const (
	StepIdentity       Step = "identity"
	StepDelivery       Step = "delivery"
	StepPaymentHandoff Step = "payment_handoff"
)

// CheckoutSession accumulates shopper input across the three steps. The step
// field only ever moves forward through a passed guard; back navigation keeps
// all collected data.
type CheckoutSession struct {
	UID          string
	Step         Step
	Identity     checkoutapi.CustomerIdentity
	Address      checkoutapi.DeliveryAddress
	Order        checkoutapi.OrderLine
	TotalCents   int64
	CreatedAt    time.Time
	LastModified *time.Time
}

// FieldErrors maps a field name to a shopper-facing message. All guard rules
// are evaluated together so every problem shows up at once.
type FieldErrors map[string]string

func (fe FieldErrors) IsEmpty() bool {
	return len(fe) == 0
}
