package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
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

// ProductController handles listing-related requests
type ProductController struct {
	Collection             *mongo.Collection
	UserCollection         *mongo.Collection
	NotificationCollection *mongo.Collection
}

// NewProductController creates a new ProductController
func NewProductController(client *mongo.Client) *ProductController {
	db := client.Database("marketplace")
	return &ProductController{
		Collection:             db.Collection("products"),
		UserCollection:         db.Collection("users"),
		NotificationCollection: db.Collection("notifications"),
	}
}

// CreateProductRequest is the payload for a seller's listing submission
type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Condition   string   `json:"condition"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock" validate:"required,gt=0"`
}

// CreateProduct lets a seller submit a new listing; it stays pending until
// an admin approves it
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	// Cache the seller's display name on the listing
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var seller models.User
	sellerName := "Unknown Seller"
	if err := pc.UserCollection.FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller); err == nil {
		sellerName = seller.Name
	}

	now := time.Now()
	product := models.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Images:      req.Images,
		SellerID:    sellerID,
		SellerName:  sellerName,
		Stock:       req.Stock,
		Status:      models.ProductPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := pc.Collection.InsertOne(ctx, product)
	if err != nil {
		http.Error(w, "Error creating product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"product_id": result.InsertedID,
		"status":     models.ProductPending,
		"message":    "Listing submitted for review",
	})
}

// effectiveStatus restricts the catalog status filter: the public catalog
// only ever sees approved listings, admins may query any status.
func effectiveStatus(claims *utils.Claims, requested string) string {
	if requested == "" || claims == nil || claims.Role != models.RoleAdmin {
		return models.ProductApproved
	}
	return requested
}

// GetProducts retrieves listings with filters, sorting and pagination.
// Public browsing only sees approved listings.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	claims, _ := middleware.UserFromContext(r)

	filter := bson.M{"status": effectiveStatus(claims, q.Get("status"))}
	if category := q.Get("category"); category != "" {
		filter["category"] = category
	}
	if location := q.Get("location"); location != "" {
		filter["location"] = location
	}
	if search := q.Get("q"); search != "" {
		filter["title"] = bson.M{"$regex": search, "$options": "i"}
	}

	priceFilter := bson.M{}
	if min := q.Get("min_price"); min != "" {
		if v, err := strconv.ParseFloat(min, 64); err == nil {
			priceFilter["$gte"] = v
		}
	}
	if max := q.Get("max_price"); max != "" {
		if v, err := strconv.ParseFloat(max, 64); err == nil {
			priceFilter["$lte"] = v
		}
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}

	// Sorting
	sortField := "created_at"
	if sortBy := q.Get("sort_by"); sortBy == "price" || sortBy == "title" || sortBy == "created_at" {
		sortField = sortBy
	}
	sortOrder := -1
	if q.Get("sort_order") == "asc" {
		sortOrder = 1
	}

	// Pagination
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		http.Error(w, "Error reading products", http.StatusInternalServerError)
		return
	}

	total, err := pc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		http.Error(w, "Error counting products", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProductByID retrieves a single listing by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var product models.Product
	err = pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

// GetMyProducts retrieves the authenticated seller's own listings, any status
func (pc *ProductController) GetMyProducts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := pc.Collection.Find(ctx, bson.M{"seller_id": sellerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		http.Error(w, "Error reading products", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// UpdateProduct lets the owning seller edit a listing
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Price       *float64 `json:"price,omitempty"`
		Category    *string  `json:"category,omitempty"`
		Condition   *string  `json:"condition,omitempty"`
		Location    *string  `json:"location,omitempty"`
		Images      []string `json:"images,omitempty"`
		Stock       *int     `json:"stock,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			http.Error(w, "Price must be positive", http.StatusBadRequest)
			return
		}
		update["price"] = *req.Price
	}
	if req.Category != nil {
		update["category"] = *req.Category
	}
	if req.Condition != nil {
		update["condition"] = *req.Condition
	}
	if req.Location != nil {
		update["location"] = *req.Location
	}
	if req.Images != nil {
		update["images"] = req.Images
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			http.Error(w, "Stock cannot be negative", http.StatusBadRequest)
			return
		}
		update["stock"] = *req.Stock
	}

	sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	// Admins may edit any listing; sellers only their own
	filter := bson.M{"_id": id}
	if claims.Role != models.RoleAdmin {
		filter["seller_id"] = sellerID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pc.Collection.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		http.Error(w, "Error updating product", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Product updated successfully"})
}

// DeleteProduct removes a listing (owning seller or admin)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	filter := bson.M{"_id": id}
	if claims.Role != models.RoleAdmin {
		sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		filter["seller_id"] = sellerID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pc.Collection.DeleteOne(ctx, filter)
	if err != nil {
		http.Error(w, "Error deleting product", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Product deleted successfully"})
}

// ListProductsByStatus retrieves listings filtered by status (admin only)
func (pc *ProductController) ListProductsByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.ProductPending
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := pc.Collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		http.Error(w, "Error reading products", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// UpdateProductStatus approves or rejects a pending listing (admin only)
// and notifies the seller
func (pc *ProductController) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.Status != models.ProductApproved && req.Status != models.ProductRejected {
		http.Error(w, "Status must be approved or rejected", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	err = pc.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": req.Status, "updated_at": time.Now()},
	}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	notification := models.Notification{
		UserID:    product.SellerID,
		Type:      models.NotificationSystem,
		Title:     "Listing " + req.Status,
		Message:   "Your listing '" + product.Title + "' has been " + req.Status + ".",
		ProductID: &id,
		CreatedAt: time.Now(),
	}
	if _, err := pc.NotificationCollection.InsertOne(ctx, notification); err != nil {
		// The status change already went through; the seller just misses the alert.
		http.Error(w, "Status updated but notification failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Product " + req.Status})
}
