package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing statuses
const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

// Product represents a secondhand listing submitted by a seller
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Condition   string             `bson:"condition" json:"condition"`
	Location    string             `bson:"location" json:"location"`
	Images      []string           `bson:"images" json:"images"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	SellerName  string             `bson:"seller_name" json:"seller_name"`
	Stock       int                `bson:"stock" json:"stock"`
	Status      string             `bson:"status" json:"status"` // "pending", "approved" or "rejected"
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
