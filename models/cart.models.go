package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line item in a buyer's cart. Price, title and image are
// cached from the product at the time it was added, so the cart survives
// later edits to the listing.
type CartItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BuyerID     primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	Title       string             `bson:"title" json:"title"`
	Price       float64            `bson:"price" json:"price"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	MaxQuantity int                `bson:"max_quantity" json:"max_quantity"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
