package utils

import (
	"testing"
	"time"

	"secondhand-market/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReceiptPDF(t *testing.T) {
	receipt := models.Receipt{
		ID:        primitive.NewObjectID(),
		OrderID:   primitive.NewObjectID(),
		BuyerID:   primitive.NewObjectID(),
		BuyerName: "Aye Chan",
		SellerID:  models.MultipleSellers,
		Items: []models.OrderItem{
			{Title: "Vintage Lamp", Quantity: 2, Price: 10.00, Subtotal: 20.00},
			{Title: "Used Bicycle", Quantity: 1, Price: 5.00, Subtotal: 5.00},
		},
		Subtotal:      25.00,
		Shipping:      5.99,
		Tax:           2.00,
		Total:         32.99,
		PaymentMethod: models.PaymentKBZPay,
		CreatedAt:     time.Now(),
	}

	buf, err := ReceiptPDF(receipt)
	require.NoError(t, err)
	require.NotNil(t, buf)

	out := buf.Bytes()
	assert.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
