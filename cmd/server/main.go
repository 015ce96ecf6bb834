package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rishee01/smartfix/internal/cache"
	"github.com/rishee01/smartfix/internal/classifier"
	"github.com/rishee01/smartfix/internal/config"
	"github.com/rishee01/smartfix/internal/database"
	"github.com/rishee01/smartfix/internal/handler"
	"github.com/rishee01/smartfix/internal/middleware"
	"github.com/rishee01/smartfix/internal/service"
	"github.com/rishee01/smartfix/internal/store"
)

func main() {
	cfg := config.Load()

	// Initialize the persistence store. DATABASE_URL=memory runs without
	// Postgres; data lives only for the process lifetime.
	var st store.Store
	if cfg.DatabaseURL == "memory" {
		log.Println("Warning: using in-memory store; all data is lost on shutdown")
		st = store.NewMemory()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		st = store.NewGorm(db)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
		// Continue without Redis cache (fail-open)
	}

	// Classifier oracle: external inference service when configured,
	// otherwise the stub.
	var clf classifier.Classifier
	if cfg.InferURL != "" {
		clf = classifier.NewHTTP(cfg.InferURL)
	} else {
		clf = classifier.NewStub(time.Now().UnixNano())
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Printf("Warning: failed to create upload dir: %v", err)
	}

	// Initialize services and handlers
	reportService := service.NewReportService(st, time.Now)
	analyticsService := service.NewAnalyticsService(st, time.Now)

	reportHandler := handler.NewReportHandler(reportService, redisCache, cfg.UploadDir)
	inferHandler := handler.NewInferHandler(clf)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, redisCache)
	adminHandler := handler.NewAdminHandler(reportService, analyticsService, redisCache)
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret)

	// Setup router
	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		api.POST("/infer", inferHandler.Infer)

		api.POST("/report", reportHandler.Create)
		api.GET("/reports", reportHandler.List)
		api.GET("/reports/:id", reportHandler.Get)
		api.POST("/report/:id/verify", reportHandler.Verify)
		api.POST("/report/:id/assign", reportHandler.Assign)
		api.POST("/volunteer/claim/:id", reportHandler.Claim)

		api.GET("/heatmap", analyticsHandler.Heatmap)
		api.GET("/leaderboard", analyticsHandler.Leaderboard)

		api.POST("/admin/login", authHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(cfg.JWTSecret))
		{
			admin.GET("/metrics", adminHandler.Metrics)
			admin.POST("/report/:id/status", adminHandler.UpdateStatus)
			admin.GET("/exports/csv", adminHandler.ExportCSV)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
