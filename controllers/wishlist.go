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
)

// WishlistController handles the wishlist stored on the user document
type WishlistController struct {
	UserCollection    *mongo.Collection
	ProductCollection *mongo.Collection
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(client *mongo.Client) *WishlistController {
	db := client.Database("marketplace")
	return &WishlistController{
		UserCollection:    db.Collection("users"),
		ProductCollection: db.Collection("products"),
	}
}

// AddToWishlist adds a product id to the user's wishlist ($addToSet keeps it
// duplicate-free)
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := wc.ProductCollection.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if count == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	_, err = wc.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"wishlist": productID},
	})
	if err != nil {
		http.Error(w, "Error updating wishlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Added to wishlist"})
}

// RemoveFromWishlist removes a product id from the user's wishlist
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = wc.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"wishlist": productID},
	})
	if err != nil {
		http.Error(w, "Error updating wishlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Removed from wishlist"})
}

// GetWishlist resolves the user's wishlist ids into product documents.
// The backend caps "$in" queries at 10 ids, so the list is fetched in
// windows and the results concatenated. Products that no longer exist are
// simply absent from the response.
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
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

	var user models.User
	err = wc.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	products := []models.Product{}
	for _, chunk := range utils.ChunkIDs(user.Wishlist, utils.MaxInQuerySize) {
		cursor, err := wc.ProductCollection.Find(ctx, bson.M{"_id": bson.M{"$in": chunk}})
		if err != nil {
			http.Error(w, "Error fetching wishlist products", http.StatusInternalServerError)
			return
		}
		var batch []models.Product
		if err := cursor.All(ctx, &batch); err != nil {
			http.Error(w, "Error reading wishlist products", http.StatusInternalServerError)
			return
		}
		products = append(products, batch...)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}
