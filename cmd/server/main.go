package main

import (
	"context"                            // context package is needed for Redis operations
	"ledger_service/internal/api"        // Custom package for API handlers
	"ledger_service/internal/config"     // Custom package for configuration
	"ledger_service/internal/db"         // Custom package for database access
	"ledger_service/internal/middleware" // Custom package for middleware
	"log"                                // log package is needed for logging
	"strings"                            // For splitting the CORS origin list

	"github.com/gin-contrib/cors"  // CORS middleware for Gin
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the configured store (MySQL or local SQLite)
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// Keep the schema current
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS: the browser frontend is served from another origin
	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" {
		corsCfg.AllowAllOrigins = true // Any origin (development default)
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",") // Configured origin list
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Admin-Token") // Admin token travels in a custom header
	r.Use(cors.New(corsCfg))

	// Public routes
	r.POST("/api/register", api.RegisterHandler(gdb, cfg))                // Registration endpoint
	r.POST("/api/login", api.LoginHandler(gdb, cfg.JWTSecret))            // Login endpoint
	r.GET("/api/user/:id", api.GetUserHandler(gdb, redisClient))          // Profile query endpoint
	r.POST("/api/user/pay", api.PayHandler(gdb, redisClient))             // Payment endpoint
	r.GET("/api/health", api.HealthHandler(gdb, redisClient))             // Liveness probe endpoint

	// Admin routes (gated by a per-admin issued token)
	adminGroup := r.Group("/api/admin")
	// Validate the token, then re-check the admin role against the store
	adminGroup.Use(middleware.AdminTokenMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(gdb))
	adminGroup.GET("/users", api.ListUsersHandler(gdb, redisClient))               // List users endpoint
	adminGroup.GET("/search-users", api.SearchUsersHandler(gdb))                   // Search users endpoint
	adminGroup.POST("/update-balance", api.UpdateBalanceHandler(gdb, redisClient)) // Balance adjustment endpoint
	adminGroup.GET("/export-db", api.ExportDBHandler(gdb))                         // Backup export endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(gdb, redisClient)) // Ledger listing endpoint

	// Role elevation keeps its historical path but runs behind the same gate
	r.GET("/api/make-me-admin/:username",
		middleware.AdminTokenMiddleware(cfg.JWTSecret),
		middleware.AdminOnlyMiddleware(gdb),
		api.MakeAdminHandler(gdb, redisClient)) // Role elevation endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
