package utils

import (
	"math"

	"secondhand-market/models"
)

// Flat shipping fee and tax rate applied to every order
const (
	ShippingFlat = 5.99
	TaxRate      = 0.08
)

// Totals holds the computed amounts for a cart or order
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// RoundCents rounds an amount to two decimal places
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ComputeTotals computes subtotal, shipping, tax and total over cart line items.
// subtotal = sum(price * quantity), shipping is flat, tax is 8% of subtotal.
func ComputeTotals(items []models.CartItem) Totals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = RoundCents(subtotal)
	tax := RoundCents(subtotal * TaxRate)
	total := RoundCents(subtotal + ShippingFlat + tax)

	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFlat,
		Tax:      tax,
		Total:    total,
	}
}
