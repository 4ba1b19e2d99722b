package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/handlers"
	"github.com/relieflink/disaster-response-api/internal/logger"
	"github.com/relieflink/disaster-response-api/internal/middleware"
	"github.com/relieflink/disaster-response-api/internal/realtime"
	"github.com/relieflink/disaster-response-api/internal/services"
	"github.com/relieflink/disaster-response-api/internal/telemetry"
)

// @title Disaster Response API
// @version 1.0.0
// @description Disaster coordination platform: disasters, reports, resources, geocoding, and real-time updates
// @BasePath /api
// @securityDefinitions.apikey UserHeader
// @in header
// @name x-user-id
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "disaster-response-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "disaster-response-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Background context shared by the hub and collectors
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start DB connection pool metrics collection
	go database.StartConnectionPoolMetricsCollector(runCtx, db.DB, 15*time.Second)

	// Shared services
	clock := clockwork.NewRealClock()
	cache := services.NewDBCache(db, clock)
	geocoder := services.NewGeocodingService(cfg, cache)
	socialMedia := services.NewSocialMediaService(cfg, cache, clock)
	updates := services.NewUpdatesService(cfg, cache, clock)
	verification := services.NewVerificationService(clock)

	// Real-time hub plus a periodic sweep of expired cache rows
	hub := realtime.NewHub()
	go hub.Run(runCtx)
	go sweepCache(runCtx, cache)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Disaster Response API",
		ErrorHandler: handlers.NewErrorHandler(cfg),
	})

	// Middleware
	app.Use(recover.New())
	// JSON structured access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		TimeZone:   "UTC",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "disaster-response-api",
		Skip: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
	}))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With, x-user-id",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	// Setup routes
	setupRoutes(app, db, cfg, routeDeps{
		geocoder:     geocoder,
		socialMedia:  socialMedia,
		updates:      updates,
		verification: verification,
		hub:          hub,
	})

	// Start server
	port := cfg.ServerPort
	if port == "" {
		port = "3001"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

type routeDeps struct {
	geocoder     *services.GeocodingService
	socialMedia  *services.SocialMediaService
	updates      *services.UpdatesService
	verification *services.VerificationService
	hub          *realtime.Hub
}

func setupRoutes(app *fiber.App, db *database.DB, cfg *config.Config, deps routeDeps) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/liveness", handlers.LivenessCheck)
	app.Get("/readiness", handlers.ReadinessCheck(db))

	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.PrometheusHandler())

	// Websocket endpoint for real-time updates
	app.Use("/ws", realtime.UpgradeRequired)
	app.Get("/ws", realtime.Handler(deps.hub))

	// API group
	api := app.Group("/api")

	disasters := api.Group("/disasters")
	handlers.SetupDisasterRoutes(disasters, db, deps.geocoder, deps.hub)

	reports := api.Group("/reports")
	handlers.SetupReportRoutes(reports, db)

	resources := api.Group("/resources")
	handlers.SetupResourceRoutes(resources, db, deps.geocoder, deps.hub)

	socialMedia := api.Group("/social-media")
	handlers.SetupSocialMediaRoutes(socialMedia, db, deps.socialMedia, deps.hub)

	updates := api.Group("/updates")
	handlers.SetupUpdatesRoutes(updates, db, deps.updates)

	geocoding := api.Group("/geocoding")
	handlers.SetupGeocodingRoutes(geocoding, deps.geocoder)

	verification := api.Group("/verification")
	handlers.SetupVerificationRoutes(verification, db, deps.verification)
}

// sweepCache periodically drops expired cache rows so lazy eviction does
// not leave the table to grow unbounded.
func sweepCache(ctx context.Context, cache services.Cache) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cache.ClearExpired(ctx)
		}
	}
}
