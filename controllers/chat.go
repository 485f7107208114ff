package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"secondhand-market/middleware"
	"secondhand-market/models"
	"secondhand-market/utils"
	"secondhand-market/ws"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatController handles buyer-seller conversations and live delivery
type ChatController struct {
	ChatCollection         *mongo.Collection
	MessageCollection      *mongo.Collection
	NotificationCollection *mongo.Collection
	Hub                    *ws.Hub
}

// NewChatController creates a new ChatController
func NewChatController(client *mongo.Client, hub *ws.Hub) *ChatController {
	db := client.Database("marketplace")
	return &ChatController{
		ChatCollection:         db.Collection("chats"),
		MessageCollection:      db.Collection("messages"),
		NotificationCollection: db.Collection("notifications"),
		Hub:                    hub,
	}
}

// CreateChat finds or creates the conversation between the caller and
// another participant, optionally tied to a product
func (cc *ChatController) CreateChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ParticipantID string `json:"participant_id" validate:"required"`
		ProductID     string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	otherID, err := primitive.ObjectIDFromHex(req.ParticipantID)
	if err != nil {
		http.Error(w, "Invalid participant ID", http.StatusBadRequest)
		return
	}
	if userID == otherID {
		http.Error(w, "Cannot open a chat with yourself", http.StatusBadRequest)
		return
	}

	filter := bson.M{"participants": bson.M{"$all": []primitive.ObjectID{userID, otherID}}}
	var productID *primitive.ObjectID
	if req.ProductID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			http.Error(w, "Invalid product ID", http.StatusBadRequest)
			return
		}
		productID = &pid
		filter["product_id"] = pid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var chat models.Chat
	err = cc.ChatCollection.FindOne(ctx, filter).Decode(&chat)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chat)
		return
	}

	now := time.Now()
	chat = models.Chat{
		Participants:  []primitive.ObjectID{userID, otherID},
		ProductID:     productID,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	result, err := cc.ChatCollection.InsertOne(ctx, chat)
	if err != nil {
		http.Error(w, "Error creating chat", http.StatusInternalServerError)
		return
	}
	chat.ID = result.InsertedID.(primitive.ObjectID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(chat)
}

// ListChats retrieves the user's conversations, most recent activity first
func (cc *ChatController) ListChats(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := cc.ChatCollection.Find(ctx, bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Error fetching chats", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		http.Error(w, "Error reading chats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chats)
}

// loadChatForParticipant fetches a chat and verifies the caller belongs to it
func (cc *ChatController) loadChatForParticipant(ctx context.Context, chatIDHex, userIDHex string) (*models.Chat, primitive.ObjectID, error) {
	chatID, err := primitive.ObjectIDFromHex(chatIDHex)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}

	var chat models.Chat
	err = cc.ChatCollection.FindOne(ctx, bson.M{"_id": chatID, "participants": userID}).Decode(&chat)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	return &chat, userID, nil
}

// ListMessages retrieves a chat's messages in chronological order
func (cc *ChatController) ListMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chat, _, err := cc.loadChatForParticipant(ctx, mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	cursor, err := cc.MessageCollection.Find(ctx, bson.M{"chat_id": chat.ID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		http.Error(w, "Error fetching messages", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		http.Error(w, "Error reading messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// SendMessage appends a message to a chat, updates the chat's last-message
// cache, and pushes the message to the other participant. When they have no
// live connection a notification is written instead.
func (cc *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text string `json:"text" validate:"required,min=1,max=4000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chat, senderID, err := cc.loadChatForParticipant(ctx, mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	message := models.Message{
		ChatID:    chat.ID,
		SenderID:  senderID,
		Text:      req.Text,
		CreatedAt: now,
	}
	result, err := cc.MessageCollection.InsertOne(ctx, message)
	if err != nil {
		http.Error(w, "Error sending message", http.StatusInternalServerError)
		return
	}
	message.ID = result.InsertedID.(primitive.ObjectID)

	_, err = cc.ChatCollection.UpdateOne(ctx, bson.M{"_id": chat.ID}, bson.M{
		"$set": bson.M{
			"last_message":    req.Text,
			"last_sender_id":  senderID,
			"last_message_at": now,
		},
	})
	if err != nil {
		log.Printf("Failed to update chat last message: %v", err)
	}

	// Deliver to the other participant
	for _, participant := range chat.Participants {
		if participant == senderID {
			continue
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"type":    "chat_message",
			"chat_id": chat.ID.Hex(),
			"message": message,
		})
		cc.Hub.SendToUser(participant.Hex(), payload)

		if !cc.Hub.IsUserOnline(participant.Hex()) {
			notification := models.Notification{
				UserID:    participant,
				Type:      models.NotificationMessage,
				Title:     "New message",
				Message:   req.Text,
				Link:      "/chats/" + chat.ID.Hex(),
				CreatedAt: now,
			}
			if _, err := cc.NotificationCollection.InsertOne(ctx, notification); err != nil {
				log.Printf("Failed to write message notification: %v", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

// ServeWS upgrades the connection and registers it with the hub. The token
// comes in the query string because browsers cannot set headers on
// websocket handshakes.
func (cc *ChatController) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Token missing", http.StatusUnauthorized)
		return
	}

	claims := &utils.Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &ws.Client{
		Hub:    cc.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: claims.UserID,
	}
	cc.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
