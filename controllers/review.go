package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"secondhand-market/middleware"
	"secondhand-market/models"
	"secondhand-market/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewController handles product reviews
type ReviewController struct {
	Collection        *mongo.Collection
	ProductCollection *mongo.Collection
	UserCollection    *mongo.Collection
}

// NewReviewController creates a new ReviewController
func NewReviewController(client *mongo.Client) *ReviewController {
	db := client.Database("marketplace")
	return &ReviewController{
		Collection:        db.Collection("reviews"),
		ProductCollection: db.Collection("products"),
		UserCollection:    db.Collection("users"),
	}
}

// CreateReview lets a buyer rate a product
func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.Role == models.RoleSeller {
		http.Error(w, "Only buyers can review products", http.StatusForbidden)
		return
	}

	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
		Text   string `json:"text"`
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := rc.ProductCollection.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if count == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	userName := "Anonymous"
	var user models.User
	if err := rc.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil {
		userName = user.Name
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	result, err := rc.Collection.InsertOne(ctx, review)
	if err != nil {
		http.Error(w, "Error creating review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"review_id": result.InsertedID,
		"message":   "Review submitted",
	})
}

// GetReviews retrieves every review on a product, newest first
func (rc *ReviewController) GetReviews(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := rc.Collection.Find(ctx, bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Error fetching reviews", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		http.Error(w, "Error reading reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}
