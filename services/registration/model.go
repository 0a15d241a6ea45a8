package registration

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodDebit  PaymentMethod = "debit"
)

type Address struct {
	PostalCode   string
	Street       string
	HouseNumber  string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

func (a Address) Summary() string {
	return fmt.Sprintf("%s, %s/%s - %s", a.Street, a.City, a.State, a.PostalCode)
}

type StoredRecord struct {
	UID             string
	Name            string
	Email           string
	Phone           string
	Address         Address
	PixCode         string
	IsPaid          bool
	CreatedAt       time.Time
	OrderValueCents int64
	PaymentMethod   PaymentMethod
}

func (r StoredRecord) OrderValue() string {
	return fmt.Sprintf("R$ %.2f", float64(r.OrderValueCents)/100.0)
}

func (r StoredRecord) PaidLabel() string {
	if r.IsPaid {
		return "SIM"
	}
	return "NÃO"
}

// RecordUpdate carries the fields of a partial update; nil means unchanged.
type RecordUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *Address
	PixCode       *string
	IsPaid        *bool
	PaymentMethod *PaymentMethod
}

type Stats struct {
	TotalRecords      int
	PaidRecords       int
	UnpaidRecords     int
	ConversionRate    float64 // percentage, 0 when no records
	TotalRevenueCents int64   // paid records only
}

func (s Stats) TotalRevenue() string {
	return fmt.Sprintf("R$ %.2f", float64(s.TotalRevenueCents)/100.0)
}
