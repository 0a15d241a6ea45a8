package telemetry

import "fmt"

// Event is a closed set of trackable happenings, each with its own fixed
// parameter record.
type Event interface {
	EventName() string
	EventParams() map[string]string
}

type PageView struct {
	PageName string
}

func (e PageView) EventName() string { return "PageView" }
func (e PageView) EventParams() map[string]string {
	return map[string]string{"page": e.PageName}
}

type InitiateCheckout struct {
	ValueInCents int64
	Quantity     int
}

func (e InitiateCheckout) EventName() string { return "InitiateCheckout" }
func (e InitiateCheckout) EventParams() map[string]string {
	return map[string]string{
		"value":    formatCents(e.ValueInCents),
		"currency": "BRL",
		"quantity": fmt.Sprintf("%d", e.Quantity),
	}
}

type CompleteRegistration struct {
	ValueInCents int64
}

func (e CompleteRegistration) EventName() string { return "CompleteRegistration" }
func (e CompleteRegistration) EventParams() map[string]string {
	return map[string]string{
		"value":    formatCents(e.ValueInCents),
		"currency": "BRL",
	}
}

type AddPaymentInfo struct {
	ValueInCents int64
}

func (e AddPaymentInfo) EventName() string { return "AddPaymentInfo" }
func (e AddPaymentInfo) EventParams() map[string]string {
	return map[string]string{
		"value":    formatCents(e.ValueInCents),
		"currency": "BRL",
	}
}

type PixGenerated struct {
	TransactionUID string
	ValueInCents   int64
}

func (e PixGenerated) EventName() string { return "PixGenerated" }
func (e PixGenerated) EventParams() map[string]string {
	return map[string]string{
		"transaction_id": e.TransactionUID,
		"value":          formatCents(e.ValueInCents),
	}
}

type PixCodeCopied struct {
	TransactionUID string
	ValueInCents   int64
}

func (e PixCodeCopied) EventName() string { return "PixCodeCopied" }
func (e PixCodeCopied) EventParams() map[string]string {
	return map[string]string{
		"transaction_id": e.TransactionUID,
		"value":          formatCents(e.ValueInCents),
	}
}

type Engagement struct {
	Action string
	Label  string
}

func (e Engagement) EventName() string { return "Engagement" }
func (e Engagement) EventParams() map[string]string {
	return map[string]string{
		"action": e.Action,
		"label":  e.Label,
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
