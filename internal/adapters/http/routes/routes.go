package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"queueflow/internal/adapters/estimator"
	"queueflow/internal/adapters/http/handlers"
	"queueflow/internal/adapters/http/middleware"
	"queueflow/internal/adapters/persistence/repositories"
	"queueflow/internal/adapters/realtime"
	"queueflow/internal/config"
	"queueflow/internal/core/services"
)

// Setup configures all application routes
func Setup(app *fiber.App, db *mongo.Database, redisClient *redis.Client, cfg *config.Config) {
	// Initialize repositories
	queueRepo := repositories.NewQueueRepository(db)
	waitlistRepo := repositories.NewWaitlistRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	preferenceRepo := repositories.NewPreferenceRepository(db)

	// Initialize realtime plumbing
	publisher := realtime.NewPublisher(redisClient)

	// Initialize services
	queueService := services.NewQueueService(queueRepo, waitlistRepo, historyRepo, publisher)
	historyService := services.NewHistoryService(historyRepo)
	preferenceService := services.NewPreferenceService(preferenceRepo)
	estimatorService := services.NewEstimatorService(estimator.NewGeminiEstimator(estimator.Config{
		APIKey:  cfg.Estimator.APIKey,
		Model:   cfg.Estimator.Model,
		BaseURL: cfg.Estimator.BaseURL,
		Timeout: cfg.EstimatorTimeout(),
	}))

	watcher := realtime.NewWatcher(redisClient, queueService, historyService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(cfg)
	queueHandler := handlers.NewQueueHandler(queueService, historyService, estimatorService, watcher)
	adminHandler := handlers.NewQueueAdminHandler(queueService, historyService, watcher)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)

	// Health endpoints
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")

	// Auth (dev-mode token minting only)
	auth := api.Group("/auth")
	auth.Post("/token", authHandler.DevToken)

	// Customer endpoints: no account, the ticket id is the credential
	queues := api.Group("/queues")
	// Registered before /:id so "resolve" is not captured as a queue id
	queues.Get("/resolve", queueHandler.ResolveJoinLink)
	queues.Get("/:id", middleware.CacheControl(30*time.Second), queueHandler.GetQueue)
	queues.Post("/:id/tickets", middleware.JoinRateLimiter(), queueHandler.JoinQueue)
	queues.Get("/:id/tickets/:ticketId", queueHandler.GetTicket)
	queues.Delete("/:id/tickets/:ticketId", queueHandler.LeaveQueue)
	queues.Get("/:id/tickets/:ticketId/estimate", queueHandler.GetEstimate)
	queues.Get("/:id/tickets/:ticketId/stream", queueHandler.StreamTicket)

	// Admin endpoints: JWT required
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg))
	admin.Post("/queues", adminHandler.CreateQueue)
	admin.Get("/queues", adminHandler.ListQueues)
	admin.Delete("/queues/:id", adminHandler.DeleteQueue)
	admin.Get("/queues/:id/waitlist", adminHandler.Waitlist)
	admin.Get("/queues/:id/join-link", adminHandler.JoinLink)
	admin.Get("/queues/:id/history", adminHandler.History)
	admin.Get("/queues/:id/stream", adminHandler.StreamWaitlist)
	admin.Post("/queues/:id/tickets/:ticketId/call", adminHandler.CallTicket)
	admin.Delete("/queues/:id/tickets/:ticketId", adminHandler.CompleteTicket)

	admin.Get("/preferences", preferenceHandler.Get)
	admin.Put("/preferences", preferenceHandler.Update)
	admin.Post("/preferences/theme", preferenceHandler.ToggleTheme)
}
