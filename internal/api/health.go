package api

import (
	"context"  // Context for dependency pings
	"net/http" // HTTP status codes
	"time"     // Ping timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// HealthHandler reports process liveness for the external probe, with the
// state of each dependency alongside
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second) // Bounded dependency checks
		defer cancel()

		checks := gin.H{} // Per-dependency results
		// Ping the database through the underlying sql.DB
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = err.Error()
		}
		checks["database"] = dbStatus
		// Ping Redis
		redisStatus := "ok"
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = err.Error()
		}
		checks["redis"] = redisStatus

		// The probe only cares that the process answers; dependency states
		// are informational
		c.JSON(http.StatusOK, gin.H{"status": "alive", "checks": checks})
	}
}
