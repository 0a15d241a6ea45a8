package pixpayment

import (
	"context"
	"time"
)

const (
	TransactionStatusPaid    = "paid"
	TransactionStatusPending = "pending"
)

type Customer struct {
	Name  string
	Email string
	TaxID string
	Phone string
}

type CreatePaymentRequest struct {
	AmountInCents int64
	Customer      Customer
	Description   string
}

type CreatePaymentResponse struct {
	TransactionUID string
	Status         string
	AmountInCents  int64
	PixCode        string
	ExpiresAt      time.Time
}

// Gateway is the outbound port to the PIX payment provider.
//
//go:generate mockgen -source=gateway.go -package pixpayment -destination gateway_mock.go Gateway
type Gateway interface {
	CreatePayment(c context.Context, req CreatePaymentRequest) (CreatePaymentResponse, error)
	GetStatus(c context.Context, transactionUID string) (string, error)
}
