package main

import (
	"log"

	"coursemarket/backend/clients/identity"
	"coursemarket/backend/clients/media"
	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/routes"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// External collaborators: identity provider and media host
	idClient := identity.NewAPIClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey)
	uploader, err := media.NewOSSUploader(cfg.OSSEndpoint, cfg.OSSBucket, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		log.Fatalf("Error initializing media storage: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, idClient, uploader)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
