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

// CartController handles cart-related requests. Each line item is its own
// document keyed by buyer and product.
type CartController struct {
	Collection        *mongo.Collection
	ProductCollection *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(client *mongo.Client) *CartController {
	db := client.Database("marketplace")
	return &CartController{
		Collection:        db.Collection("cart_items"),
		ProductCollection: db.Collection("products"),
	}
}

// clampQuantity keeps quantity within [1, max]
func clampQuantity(quantity, max int) int {
	if quantity < 1 {
		return 1
	}
	if max > 0 && quantity > max {
		return max
	}
	return quantity
}

// AddToCart adds a product to the buyer's cart. Re-adding a product already
// in the cart increments its quantity instead of duplicating the line item.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	err = cc.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if product.Status != models.ProductApproved {
		http.Error(w, "Product is not available", http.StatusBadRequest)
		return
	}
	if product.Stock < 1 {
		http.Error(w, "Product is out of stock", http.StatusBadRequest)
		return
	}
	if product.SellerID == buyerID {
		http.Error(w, "You cannot add your own listing to the cart", http.StatusBadRequest)
		return
	}

	// Increment if the product is already in the cart
	var existing models.CartItem
	err = cc.Collection.FindOne(ctx, bson.M{"buyer_id": buyerID, "product_id": productID}).Decode(&existing)
	if err == nil {
		newQuantity := clampQuantity(existing.Quantity+req.Quantity, existing.MaxQuantity)
		_, err = cc.Collection.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{
			"$set": bson.M{"quantity": newQuantity},
		})
		if err != nil {
			http.Error(w, "Error updating cart", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  "Item quantity updated",
			"quantity": newQuantity,
		})
		return
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}

	item := models.CartItem{
		BuyerID:     buyerID,
		ProductID:   productID,
		Title:       product.Title,
		Price:       product.Price,
		Image:       image,
		Quantity:    clampQuantity(req.Quantity, product.Stock),
		MaxQuantity: product.Stock,
		SellerID:    product.SellerID,
		CreatedAt:   time.Now(),
	}

	result, err := cc.Collection.InsertOne(ctx, item)
	if err != nil {
		http.Error(w, "Error adding to cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"item_id": result.InsertedID,
		"message": "Item added to cart",
	})
}

// GetCart retrieves the buyer's line items and computed totals
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cursor, err := cc.Collection.Find(ctx, bson.M{"buyer_id": buyerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	items := []models.CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		http.Error(w, "Error reading cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":  items,
		"totals": utils.ComputeTotals(items),
	})
}

// UpdateCartItem sets a line item's quantity, clamped to [1, max_quantity]
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	itemID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var item models.CartItem
	err = cc.Collection.FindOne(ctx, bson.M{"_id": itemID, "buyer_id": buyerID}).Decode(&item)
	if err != nil {
		http.Error(w, "Cart item not found", http.StatusNotFound)
		return
	}

	quantity := clampQuantity(req.Quantity, item.MaxQuantity)
	_, err = cc.Collection.UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{
		"$set": bson.M{"quantity": quantity},
	})
	if err != nil {
		http.Error(w, "Error updating cart item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Quantity updated",
		"quantity": quantity,
	})
}

// RemoveCartItem deletes a line item from the buyer's cart
func (cc *CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	itemID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := cc.Collection.DeleteOne(ctx, bson.M{"_id": itemID, "buyer_id": buyerID})
	if err != nil {
		http.Error(w, "Error removing cart item", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Cart item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Item removed from cart"})
}
