package shopfront

import (
	"fmt"
	"time"
)

// Product is the one SKU this storefront sells.
type Product struct {
	UID            string
	Name           string
	VariantLabel   string
	UnitPriceCents int64
}

func (p Product) UnitPrice() string {
	return formatAmount(p.UnitPriceCents)
}

var theProduct = Product{
	UID:            "pijama-coloriae",
	Name:           "Pijama Coloriaê",
	VariantLabel:   "12 ANOS",
	UnitPriceCents: 16700,
}

type Cart struct {
	UID          string
	Product      Product
	Quantity     int
	CreatedAt    time.Time
	LastModified *time.Time
}

func (c Cart) TotalCents() int64 {
	return c.Product.UnitPriceCents * int64(c.Quantity)
}

func (c Cart) Total() string {
	return formatAmount(c.TotalCents())
}

// Brazilian price rendering, comma as decimal separator
func formatAmount(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
