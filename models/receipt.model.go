package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MultipleSellers is stored in a receipt's seller field when the order spans
// more than one distinct seller.
const MultipleSellers = "multiple"

// Receipt is the immutable purchase record written once at checkout.
// It mirrors the order at creation time and is never updated afterwards,
// even when the order's status changes.
type Receipt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       primitive.ObjectID `bson:"order_id" json:"order_id"`
	BuyerID       primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	BuyerName     string             `bson:"buyer_name" json:"buyer_name"`
	SellerID      string             `bson:"seller_id" json:"seller_id"` // seller's hex id, or "multiple"
	SellerName    string             `bson:"seller_name" json:"seller_name"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	Shipping      float64            `bson:"shipping" json:"shipping"`
	Tax           float64            `bson:"tax" json:"tax"`
	Total         float64            `bson:"total" json:"total"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
