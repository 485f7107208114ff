// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"secondhand-market/controllers"
	"secondhand-market/routes"
	"secondhand-market/utils"
	"secondhand-market/ws"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Websocket hub for live chat delivery
	hub := ws.NewHub()
	go hub.Run()

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	// Initialize controllers
	c := routes.Controllers{
		User:         controllers.NewUserController(client),
		Product:      controllers.NewProductController(client),
		Cart:         controllers.NewCartController(client),
		Order:        controllers.NewOrderController(client, emailService),
		Wishlist:     controllers.NewWishlistController(client),
		Notification: controllers.NewNotificationController(client),
		Chat:         controllers.NewChatController(client, hub),
		Review:       controllers.NewReviewController(client),
		Upload:       controllers.NewUploadController(uploadDir),
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, c)

	// Serve uploaded images
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
