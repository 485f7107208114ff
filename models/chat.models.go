package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is one conversation between a buyer and a seller, usually opened
// from a product page. LastMessage is a cache for the chat list view.
type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Participants  []primitive.ObjectID `bson:"participants" json:"participants"`
	ProductID     *primitive.ObjectID  `bson:"product_id,omitempty" json:"product_id,omitempty"`
	LastMessage   string               `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastSenderID  *primitive.ObjectID  `bson:"last_sender_id,omitempty" json:"last_sender_id,omitempty"`
	LastMessageAt time.Time            `bson:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
}

// Message is one message inside a chat
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ChatID    primitive.ObjectID `bson:"chat_id" json:"chat_id"`
	SenderID  primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
