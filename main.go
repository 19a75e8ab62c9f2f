package main

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"ihya/config"
	"ihya/middleware"
	"ihya/routes"
	"ihya/services"
	"ihya/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database (migrates and seeds)
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Activity logs are written off the request path.
	activity := services.NewActivityService(db)
	defer activity.Close()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, activity)

	// Daily platform snapshot rollup
	snapshots := services.NewSnapshotService(db)
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(1).Day().At("00:05").Do(func() {
		if err := snapshots.TakeDailySnapshot(); err != nil {
			logger.Printf("daily snapshot failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Error scheduling snapshot job: %v", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
