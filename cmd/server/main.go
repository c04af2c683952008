package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"queueflow/internal/adapters/http/middleware"
	"queueflow/internal/adapters/http/routes"
	"queueflow/internal/adapters/persistence/repositories"
	"queueflow/internal/config"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to the session store
	db, err := config.ConnectMongo(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer config.CloseMongo()

	// Connect to the realtime broker
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repositories.EnsureIndexes(startupCtx, db); err != nil {
		log.Fatalf("❌ Failed to ensure indexes: %v", err)
	}
	log.Println("✅ Store indexes ensured")

	// Seed a demo queue (dev mode only)
	if err := config.SeedDemoQueue(startupCtx, cfg, repositories.NewQueueRepository(db)); err != nil {
		log.Printf("⚠️ Warning: Failed to seed demo queue: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "QueueFlow API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, redis and cfg for dependency injection)
	routes.Setup(app, db, redisClient, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
