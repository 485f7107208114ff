package utils

import (
	"testing"

	"secondhand-market/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	// cart = [{price: 10.00, qty: 2}, {price: 5.00, qty: 1}]
	items := []models.CartItem{
		{Price: 10.00, Quantity: 2},
		{Price: 5.00, Quantity: 1},
	}

	totals := ComputeTotals(items)

	assert.Equal(t, 25.00, totals.Subtotal)
	assert.Equal(t, 5.99, totals.Shipping)
	assert.Equal(t, 2.00, totals.Tax)
	assert.Equal(t, 32.99, totals.Total)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Tax)
	assert.Equal(t, ShippingFlat, totals.Shipping)
	assert.Equal(t, 5.99, totals.Total)
}

func TestComputeTotalsRoundsToCents(t *testing.T) {
	items := []models.CartItem{
		{Price: 0.10, Quantity: 3}, // 0.30 subtotal, 0.024 tax
	}

	totals := ComputeTotals(items)

	assert.Equal(t, 0.30, totals.Subtotal)
	assert.Equal(t, 0.02, totals.Tax)
	assert.Equal(t, 6.31, totals.Total)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1.23, RoundCents(1.234))
	assert.Equal(t, 1.24, RoundCents(1.236))
	assert.Equal(t, 0.0, RoundCents(0))
}
