// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
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

// OrderController handles checkout and order-related requests
type OrderController struct {
	Client                 *mongo.Client
	OrderCollection        *mongo.Collection
	ReceiptCollection      *mongo.Collection
	CartCollection         *mongo.Collection
	UserCollection         *mongo.Collection
	NotificationCollection *mongo.Collection
	EmailService           *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(client *mongo.Client, emailService *utils.EmailService) *OrderController {
	db := client.Database("marketplace")
	return &OrderController{
		Client:                 client,
		OrderCollection:        db.Collection("orders"),
		ReceiptCollection:      db.Collection("receipt_history"),
		CartCollection:         db.Collection("cart_items"),
		UserCollection:         db.Collection("users"),
		NotificationCollection: db.Collection("notifications"),
		EmailService:           emailService,
	}
}

// CheckoutRequest is the payload for placing an order. The idempotency key
// is generated by the client so a retried checkout cannot create a second
// order.
type CheckoutRequest struct {
	PaymentMethod  string `json:"payment_method" validate:"required"`
	IdempotencyKey string `json:"idempotency_key" validate:"required,min=8"`
}

// buildOrderItems converts cart line items into order items, attaching the
// resolved seller names and per-item subtotals
func buildOrderItems(cartItems []models.CartItem, sellerNames map[primitive.ObjectID]string) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		name, ok := sellerNames[ci.SellerID]
		if !ok || name == "" {
			name = "Unknown Seller"
		}
		items = append(items, models.OrderItem{
			ProductID:  ci.ProductID,
			Title:      ci.Title,
			Image:      ci.Image,
			Quantity:   ci.Quantity,
			Price:      ci.Price,
			Subtotal:   utils.RoundCents(ci.Price * float64(ci.Quantity)),
			SellerID:   ci.SellerID,
			SellerName: name,
		})
	}
	return items
}

// distinctSellerIDs returns the unique seller ids across order items,
// preserving first-seen order
func distinctSellerIDs(items []models.OrderItem) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	ids := []primitive.ObjectID{}
	for _, item := range items {
		if !seen[item.SellerID] {
			seen[item.SellerID] = true
			ids = append(ids, item.SellerID)
		}
	}
	return ids
}

// groupItemsBySeller buckets order items by their seller
func groupItemsBySeller(items []models.OrderItem) map[primitive.ObjectID][]models.OrderItem {
	groups := make(map[primitive.ObjectID][]models.OrderItem)
	for _, item := range items {
		groups[item.SellerID] = append(groups[item.SellerID], item)
	}
	return groups
}

// receiptSellerID is the single seller's hex id, or "multiple" when the
// order spans more than one seller
func receiptSellerID(sellerIDs []primitive.ObjectID) string {
	if len(sellerIDs) == 1 {
		return sellerIDs[0].Hex()
	}
	return models.MultipleSellers
}

// Checkout converts the buyer's cart into one order, one receipt and a set
// of notifications, then clears the cart. All writes happen inside a single
// transaction so a failure partway through leaves nothing behind.
func (oc *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Sellers are barred from purchasing
	if claims.Role == models.RoleSeller {
		http.Error(w, "Sellers are not allowed to place orders", http.StatusForbidden)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod == "" {
		http.Error(w, "Payment method is required", http.StatusBadRequest)
		return
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		http.Error(w, "Invalid payment method", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// A retried checkout returns the order the first attempt created
	var existing models.Order
	err = oc.OrderCollection.FindOne(ctx, bson.M{
		"idempotency_key": req.IdempotencyKey,
		"buyer_id":        buyerID,
	}).Decode(&existing)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(existing)
		return
	}

	var buyer models.User
	err = oc.UserCollection.FindOne(ctx, bson.M{"_id": buyerID}).Decode(&buyer)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	cursor, err := oc.CartCollection.Find(ctx, bson.M{"buyer_id": buyerID})
	if err != nil {
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	var cartItems []models.CartItem
	if err := cursor.All(ctx, &cartItems); err != nil {
		http.Error(w, "Error reading cart", http.StatusInternalServerError)
		return
	}
	if len(cartItems) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	// Resolve seller display names with a point read per distinct seller
	sellerNames := make(map[primitive.ObjectID]string)
	for _, ci := range cartItems {
		if _, done := sellerNames[ci.SellerID]; done {
			continue
		}
		var seller models.User
		if err := oc.UserCollection.FindOne(ctx, bson.M{"_id": ci.SellerID}).Decode(&seller); err == nil {
			sellerNames[ci.SellerID] = seller.Name
		} else {
			sellerNames[ci.SellerID] = "Unknown Seller"
		}
	}

	items := buildOrderItems(cartItems, sellerNames)
	sellerIDs := distinctSellerIDs(items)
	totals := utils.ComputeTotals(cartItems)

	now := time.Now()
	order := models.Order{
		ID:             primitive.NewObjectID(),
		IdempotencyKey: req.IdempotencyKey,
		BuyerID:        buyerID,
		BuyerName:      buyer.Name,
		SellerIDs:      sellerIDs,
		Items:          items,
		Status:         models.OrderConfirmed,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       totals.Subtotal,
		Shipping:       totals.Shipping,
		Tax:            totals.Tax,
		Total:          totals.Total,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	receipt := models.Receipt{
		OrderID:       order.ID,
		BuyerID:       buyerID,
		BuyerName:     buyer.Name,
		SellerID:      receiptSellerID(sellerIDs),
		SellerName:    sellerNames[sellerIDs[0]],
		Items:         items,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderConfirmed,
		CreatedAt:     now,
	}
	if len(sellerIDs) > 1 {
		receipt.SellerName = "Multiple Sellers"
	}

	cartIDs := make([]primitive.ObjectID, 0, len(cartItems))
	for _, ci := range cartItems {
		cartIDs = append(cartIDs, ci.ID)
	}

	session, err := oc.Client.StartSession()
	if err != nil {
		http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
		return
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// Re-check under the transaction in case a retry raced us here.
		// Hand back the winner's order so the response reflects what was
		// actually stored.
		var prior models.Order
		err := oc.OrderCollection.FindOne(sc, bson.M{
			"idempotency_key": req.IdempotencyKey,
			"buyer_id":        buyerID,
		}).Decode(&prior)
		if err == nil {
			return prior, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}

		if _, err := oc.OrderCollection.InsertOne(sc, order); err != nil {
			return nil, err
		}
		if _, err := oc.ReceiptCollection.InsertOne(sc, receipt); err != nil {
			return nil, err
		}

		buyerNotification := models.Notification{
			UserID:    buyerID,
			Type:      models.NotificationNewOrder,
			Title:     "Order placed",
			Message:   "Your order has been placed successfully.",
			OrderID:   &order.ID,
			Link:      "/orders/" + order.ID.Hex(),
			CreatedAt: now,
		}
		if _, err := oc.NotificationCollection.InsertOne(sc, buyerNotification); err != nil {
			return nil, err
		}

		// One notification per distinct seller summarizing their portion
		for sellerID, sellerItems := range groupItemsBySeller(items) {
			sellerTotal := 0.0
			for _, item := range sellerItems {
				sellerTotal += item.Subtotal
			}
			sellerNotification := models.Notification{
				UserID:    sellerID,
				Type:      models.NotificationProductSold,
				Title:     "You made a sale",
				Message:   fmt.Sprintf("%s purchased %s%s ($%.2f)", buyer.Name, sellerItems[0].Title, itemCountSuffix(len(sellerItems)), sellerTotal),
				OrderID:   &order.ID,
				Link:      "/orders/" + order.ID.Hex(),
				CreatedAt: now,
			}
			if _, err := oc.NotificationCollection.InsertOne(sc, sellerNotification); err != nil {
				return nil, err
			}
		}

		if _, err := oc.CartCollection.DeleteMany(sc, bson.M{"_id": bson.M{"$in": cartIDs}}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("checkout transaction failed for buyer %s: %v", claims.UserID, err)
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	// A concurrent retry already placed this order; return it unchanged
	// without a second confirmation email
	if prior, ok := result.(models.Order); ok {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(prior)
		return
	}

	// Confirmation email goes out after commit; a failure is only logged
	go func(email string, order models.Order) {
		if err := oc.EmailService.SendOrderConfirmationEmail(email, order); err != nil {
			log.Printf("Failed to send email to %s: %v", email, err)
		}
	}(buyer.Email, order)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func itemCountSuffix(n int) string {
	if n <= 1 {
		return ""
	}
	return " and other items"
}

// GetOrders retrieves all orders for the authenticated buyer
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := oc.OrderCollection.Find(ctx, bson.M{"buyer_id": buyerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		http.Error(w, "Error decoding orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// GetSellerOrders retrieves orders that include the authenticated seller's items
func (oc *OrderController) GetSellerOrders(w http.ResponseWriter, r *http.Request) {
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
	cursor, err := oc.OrderCollection.Find(ctx, bson.M{"seller_ids": sellerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		http.Error(w, "Error decoding orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// UpdateOrderStatus lets a seller on the order, or an admin, move the order
// through its statuses. The buyer is notified and emailed.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		http.Error(w, "Invalid order status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	if claims.Role != models.RoleAdmin {
		sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		onOrder := false
		for _, id := range order.SellerIDs {
			if id == sellerID {
				onOrder = true
				break
			}
		}
		if !onOrder {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	_, err = oc.OrderCollection.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{
		"$set": bson.M{"status": req.Status, "updated_at": time.Now()},
	})
	if err != nil {
		http.Error(w, "Failed to update order status", http.StatusInternalServerError)
		return
	}

	notification := models.Notification{
		UserID:    order.BuyerID,
		Type:      models.NotificationOrderStatus,
		Title:     "Order " + req.Status,
		Message:   "Your order status has been updated to '" + req.Status + "'.",
		OrderID:   &orderID,
		Link:      "/orders/" + orderID.Hex(),
		CreatedAt: time.Now(),
	}
	if _, err := oc.NotificationCollection.InsertOne(ctx, notification); err != nil {
		log.Printf("Failed to write order status notification: %v", err)
	}

	var buyer models.User
	if err := oc.UserCollection.FindOne(ctx, bson.M{"_id": order.BuyerID}).Decode(&buyer); err == nil {
		go func(email, name string) {
			if err := oc.EmailService.SendOrderStatusEmail(email, name, orderID.Hex(), req.Status); err != nil {
				log.Printf("Failed to send email to %s: %v", email, err)
			}
		}(buyer.Email, buyer.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Order status updated successfully"})
}

// GetReceipt retrieves the immutable receipt for an order
func (oc *OrderController) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, ok := oc.loadReceipt(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

// DownloadReceiptPDF renders the receipt as a downloadable PDF
func (oc *OrderController) DownloadReceiptPDF(w http.ResponseWriter, r *http.Request) {
	receipt, ok := oc.loadReceipt(w, r)
	if !ok {
		return
	}

	buf, err := utils.ReceiptPDF(receipt)
	if err != nil {
		http.Error(w, "Failed to render receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+receipt.OrderID.Hex()+".pdf")
	w.Write(buf.Bytes())
}

// loadReceipt fetches the receipt for the order in the URL, enforcing that
// only the buyer, a seller on the order, or an admin can read it
func (oc *OrderController) loadReceipt(w http.ResponseWriter, r *http.Request) (models.Receipt, bool) {
	claims, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return models.Receipt{}, false
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return models.Receipt{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var receipt models.Receipt
	err = oc.ReceiptCollection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&receipt)
	if err != nil {
		http.Error(w, "Receipt not found", http.StatusNotFound)
		return models.Receipt{}, false
	}

	if claims.Role != models.RoleAdmin && receipt.BuyerID.Hex() != claims.UserID {
		allowed := false
		if receipt.SellerID == claims.UserID {
			allowed = true
		}
		for _, item := range receipt.Items {
			if item.SellerID.Hex() == claims.UserID {
				allowed = true
				break
			}
		}
		if !allowed {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return models.Receipt{}, false
		}
	}

	return receipt, true
}
