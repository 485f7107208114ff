package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationNewOrder    = "new_order"
	NotificationOrderStatus = "order_status"
	NotificationMessage     = "message"
	NotificationSystem      = "system"
	NotificationProductSold = "product_sold"
)

// Notification is one entry in a user's append-only notification feed
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	OrderID   *primitive.ObjectID `bson:"order_id,omitempty" json:"order_id,omitempty"`
	ProductID *primitive.ObjectID `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Link      string              `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
