package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods accepted at checkout
const (
	PaymentKBZPay = "KBZPay"
	PaymentWave   = "WavePay"
	PaymentAYA    = "AYAPay"
	PaymentUAB    = "UABPay"
	PaymentCOD    = "COD"
)

// Order statuses
const (
	OrderConfirmed = "confirmed"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// ValidPaymentMethod reports whether method is one of the accepted payment methods
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentKBZPay, PaymentWave, PaymentAYA, PaymentUAB, PaymentCOD:
		return true
	}
	return false
}

// ValidOrderStatus reports whether status is a known order status
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderConfirmed, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is one purchased line item, with the price snapshot taken from the cart
type OrderItem struct {
	ProductID  primitive.ObjectID `bson:"product_id" json:"product_id"`
	Title      string             `bson:"title" json:"title"`
	Image      string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	Price      float64            `bson:"price" json:"price"`
	Subtotal   float64            `bson:"subtotal" json:"subtotal"`
	SellerID   primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	SellerName string             `bson:"seller_name" json:"seller_name"`
}

// Order represents a buyer's order, possibly spanning multiple sellers
type Order struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	IdempotencyKey string               `bson:"idempotency_key" json:"idempotency_key"`
	BuyerID        primitive.ObjectID   `bson:"buyer_id" json:"buyer_id"`
	BuyerName      string               `bson:"buyer_name" json:"buyer_name"`
	SellerIDs      []primitive.ObjectID `bson:"seller_ids" json:"seller_ids"`
	Items          []OrderItem          `bson:"items" json:"items"`
	Status         string               `bson:"status" json:"status"`
	PaymentMethod  string               `bson:"payment_method" json:"payment_method"`
	Subtotal       float64              `bson:"subtotal" json:"subtotal"`
	Shipping       float64              `bson:"shipping" json:"shipping"`
	Tax            float64              `bson:"tax" json:"tax"`
	Total          float64              `bson:"total" json:"total"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}
