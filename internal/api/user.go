package api

import (
	"context"                        // Context for Redis operations
	"errors"                         // Sentinel error matching
	"ledger_service/internal/domain" // Importing domain models
	"ledger_service/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion
	"time"                           // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// PayRequest represents a payment request
type PayRequest struct {
	UserID uint    `json:"user_id" binding:"required"`    // Paying user
	Value  float64 `json:"value" binding:"required,gt=0"` // Payment amount, must be positive
}

// GetUserHandler returns the public profile for a user id
func GetUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse the user id from the path
		if err != nil || id <= 0 {
			// Non-numeric ids behave like missing users
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		ctx := context.Background()                            // Context for Redis operations
		cacheKey := utils.UserCachePrefix + strconv.Itoa(id)   // Cache key for the profile
		var profile ProfileResponse                            // Profile struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &profile) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, profile) // Return cached profile
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, id).Error; err != nil {
			// Return not found if the user doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		profile = ProfileResponse{
			ID:       user.ID,       // User ID
			Username: user.Username, // Username
			Role:     user.Role,     // User role
			Balance:  user.Balance,  // Current balance
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, profile, 60*time.Second) // Cache the profile for 60 seconds
		c.JSON(http.StatusOK, profile)                                  // Return the profile
	}
}

// PayHandler debits a user's balance and appends a payment row to the ledger.
// This is the only caller-facing operation that decreases a balance and it
// can never drive it negative.
func PayHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PayRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Value <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Confirm the user exists before touching the balance
		if err := db.First(&user, req.UserID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var newBalance float64 // Balance after the debit, read inside the transaction
		// Atomic debit + ledger append
		err := db.Transaction(func(tx *gorm.DB) error {
			// Conditional decrement: the balance guard makes concurrent
			// payments unable to overdraw the account
			res := tx.Model(&domain.User{}).
				Where("id = ? AND balance >= ?", req.UserID, req.Value).
				Update("balance", gorm.Expr("balance - ?", req.Value))
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return domain.ErrInsufficientFunds // Guard failed: amount exceeds balance
			}
			// Create the ledger row with the debit negated
			t := domain.Transaction{
				UserID: req.UserID,       // Owning user
				Amount: -req.Value,       // Signed amount: debit
				Type:   domain.TxPayment, // Transaction type
			}
			// Save transaction
			if err := tx.Create(&t).Error; err != nil {
				return err // Return error to rollback
			}
			// Read the resulting balance for the response
			var updated domain.User
			if err := tx.First(&updated, req.UserID).Error; err != nil {
				return err // Return error to rollback
			}
			newBalance = updated.Balance
			return nil // Commit transaction
		})
		// Payment rejected by the balance guard
		if errors.Is(err, domain.ErrInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
			return
		}
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": req.UserID,  // Paying user ID
				"value":   req.Value,   // Payment amount
				"error":   err.Error(), // Error message
			}).Error("Payment failed") // Log payment failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
			return
		}
		// Log successful payment
		logrus.WithFields(logrus.Fields{
			"user_id":     req.UserID,                      // Paying user ID
			"value":       req.Value,                       // Payment amount
			"new_balance": newBalance,                      // Balance after the debit
			"type":        domain.TxPayment,                // Transaction type
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Payment transaction") // Log payment success
		invalidateUserCaches(rdb, req.UserID) // Drop stale cached views
		// Return the new balance
		c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "new_balance": newBalance})
	}
}

// invalidateUserCaches drops the cached profile for a user along with the
// admin listings that embed balances
func invalidateUserCaches(rdb *redis.Client, userID uint) {
	ctx := context.Background()                                       // Context for Redis operations
	userKey := utils.UserCachePrefix + strconv.Itoa(int(userID))      // Profile cache key
	_ = utils.DeleteCache(ctx, rdb, userKey)                          // Invalidate profile cache
	_ = utils.DeleteCache(ctx, rdb, utils.AdminUsersKey)              // Invalidate the admin user listing
	_ = utils.DeleteCacheByPrefix(ctx, rdb, utils.AdminTxsPrefix)     // Invalidate cached ledger listings
}
