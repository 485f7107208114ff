// routes/routes.go
package routes

import (
	"net/http"

	"secondhand-market/controllers"
	"secondhand-market/middleware"

	"github.com/gorilla/mux"
)

// Controllers bundles everything RegisterRoutes wires up
type Controllers struct {
	User         *controllers.UserController
	Product      *controllers.ProductController
	Cart         *controllers.CartController
	Order        *controllers.OrderController
	Wishlist     *controllers.WishlistController
	Notification *controllers.NotificationController
	Chat         *controllers.ChatController
	Review       *controllers.ReviewController
	Upload       *controllers.UploadController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/register", c.User.Register).Methods("POST")
	router.HandleFunc("/login", c.User.Login).Methods("POST")
	// Catalog browsing is public, but an admin token unlocks the status filter
	router.Handle("/products", middleware.OptionalAuthMiddleware(http.HandlerFunc(c.Product.GetProducts))).Methods("GET")
	router.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods("GET")
	router.HandleFunc("/products/{id}/reviews", c.Review.GetReviews).Methods("GET")
	router.HandleFunc("/ws", c.Chat.ServeWS).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", c.User.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", c.User.UpdateProfile).Methods("PUT")

	// Seller listing routes
	seller := router.PathPrefix("/products").Subrouter()
	seller.Use(middleware.AuthMiddleware)
	seller.Use(middleware.SellerMiddleware)
	seller.HandleFunc("", c.Product.CreateProduct).Methods("POST")
	seller.HandleFunc("/{id}", c.Product.UpdateProduct).Methods("PUT")
	seller.HandleFunc("/{id}", c.Product.DeleteProduct).Methods("DELETE")

	// A seller's own listings, any status. Lives under /seller so the public
	// /products/{id} route cannot swallow it.
	sellerArea := router.PathPrefix("/seller").Subrouter()
	sellerArea.Use(middleware.AuthMiddleware)
	sellerArea.Use(middleware.SellerMiddleware)
	sellerArea.HandleFunc("/products", c.Product.GetMyProducts).Methods("GET")

	// Reviews
	protected.HandleFunc("/products/{id}/reviews", c.Review.CreateReview).Methods("POST")

	// Cart routes
	protected.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	protected.HandleFunc("/cart/{id}", c.Cart.UpdateCartItem).Methods("PATCH")
	protected.HandleFunc("/cart/{id}", c.Cart.RemoveCartItem).Methods("DELETE")

	// Checkout and orders
	protected.HandleFunc("/checkout", c.Order.Checkout).Methods("POST")
	protected.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/seller", c.Order.GetSellerOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}/status", c.Order.UpdateOrderStatus).Methods("PATCH")
	protected.HandleFunc("/orders/{id}/receipt", c.Order.GetReceipt).Methods("GET")
	protected.HandleFunc("/orders/{id}/receipt.pdf", c.Order.DownloadReceiptPDF).Methods("GET")

	// Wishlist
	protected.HandleFunc("/wishlist", c.Wishlist.GetWishlist).Methods("GET")
	protected.HandleFunc("/wishlist/{product_id}", c.Wishlist.AddToWishlist).Methods("POST")
	protected.HandleFunc("/wishlist/{product_id}", c.Wishlist.RemoveFromWishlist).Methods("DELETE")

	// Notifications
	protected.HandleFunc("/notifications", c.Notification.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/read-all", c.Notification.MarkAllRead).Methods("PATCH")
	protected.HandleFunc("/notifications/{id}/read", c.Notification.MarkRead).Methods("PATCH")
	protected.HandleFunc("/notifications/{id}", c.Notification.DeleteNotification).Methods("DELETE")

	// Chats
	protected.HandleFunc("/chats", c.Chat.CreateChat).Methods("POST")
	protected.HandleFunc("/chats", c.Chat.ListChats).Methods("GET")
	protected.HandleFunc("/chats/{id}/messages", c.Chat.ListMessages).Methods("GET")
	protected.HandleFunc("/chats/{id}/messages", c.Chat.SendMessage).Methods("POST")

	// Uploads
	protected.HandleFunc("/uploads", c.Upload.Upload).Methods("POST")
	protected.HandleFunc("/uploads/{name}", c.Upload.Delete).Methods("DELETE")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/users", c.User.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/role", c.User.UpdateUserRole).Methods("PATCH")
	admin.HandleFunc("/users/{id}", c.User.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/products", c.Product.ListProductsByStatus).Methods("GET")
	admin.HandleFunc("/products/{id}/status", c.Product.UpdateProductStatus).Methods("PATCH")
}
