package pixpayment

import "time"

type SessionStatus string

const (
	StatusLoading                SessionStatus = "loading"
	StatusAwaitingCustomerAction SessionStatus = "awaiting_customer_action"
	StatusConfirmed              SessionStatus = "confirmed"
	StatusFailed                 SessionStatus = "failed"
)

// PaymentSession is the single payment attempt of a checkout. Status moves
// Loading to AwaitingCustomerAction to Confirmed, or Loading to Failed. A
// polling give-up leaves the status at AwaitingCustomerAction.
type PaymentSession struct {
	UID            string
	TransactionUID string
	AmountInCents  int64
	PixCode        string `datastore:",noindex"`
	QRImage        string `datastore:",noindex"`
	ExpiresAt      time.Time
	Status         SessionStatus
	FailureReason  string
	ShopperName    string
	ShopperEmail   string
	ShopperTaxID   string
	CreatedAt      time.Time
	LastModified   *time.Time
}
