package api

import (
	"context"                        // Context for Redis operations
	"errors"                         // Sentinel error matching
	"ledger_service/internal/domain" // Importing domain models
	"ledger_service/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion
	"strings"                        // String manipulation
	"time"                           // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UpdateBalanceRequest represents an administrative balance adjustment
type UpdateBalanceRequest struct {
	UserID uint     `json:"user_id" binding:"required"` // Target user
	Amount *float64 `json:"amount" binding:"required"`  // Signed adjustment amount; pointer so an explicit zero binds
}

// UserExportRecord is the full user record as written to a backup, including
// the stored credential hash
type UserExportRecord struct {
	ID       uint    `json:"id"`       // User ID
	Username string  `json:"username"` // Username
	Password string  `json:"password"` // Bcrypt hash (never a cleartext credential)
	Balance  float64 `json:"balance"`  // Current balance
	Role     string  `json:"role"`     // User role
}

// ListUsersHandler returns every user's public profile. The listing is
// unbounded and cached briefly to spare the store.
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var cached []ProfileResponse
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, utils.AdminUsersKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return cached listing
			return
		}
		var users []domain.User // Slice to hold users
		if err := db.Find(&users).Error; err != nil {
			// Unexpected store errors surface as a generic message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Map users to the public profile format
		resp := make([]ProfileResponse, len(users))
		for i, u := range users {
			resp[i] = ProfileResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Role:     u.Role,     // User role
				Balance:  u.Balance,  // Current balance
			}
		}
		// Cache the listing for future requests
		_ = utils.SetCache(ctx, rdb, utils.AdminUsersKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return the listing
	}
}

// SearchUsersHandler returns users whose username contains the query,
// case-insensitively. An empty query returns an empty list, not all users.
func SearchUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name") // Substring to match
		if name == "" {
			// Empty query short-circuits to an empty result
			c.JSON(http.StatusOK, []ProfileResponse{})
			return
		}
		var users []domain.User // Slice to hold matches
		// Usernames are stored lowercase, so lowering the query gives a
		// case-insensitive substring match on every backend
		pattern := "%" + strings.ToLower(name) + "%"
		if err := db.Where("username LIKE ?", pattern).Find(&users).Error; err != nil {
			// Unexpected store errors surface as a generic message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
			return
		}
		// Map matches to the public profile format
		resp := make([]ProfileResponse, len(users))
		for i, u := range users {
			resp[i] = ProfileResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Role:     u.Role,     // User role
				Balance:  u.Balance,  // Current balance
			}
		}
		c.JSON(http.StatusOK, resp) // Return the matches
	}
}

// UpdateBalanceHandler applies a signed adjustment to a user's balance,
// clamping the result at zero, and appends an adjustment row recording the
// delta actually applied
func UpdateBalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateBalanceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		amount := *req.Amount // Signed amount; an explicit zero is a valid no-op adjustment
		var user domain.User  // Confirm the user exists before touching the balance
		if err := db.First(&user, req.UserID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var newBalance float64 // Balance after the adjustment
		// Atomic adjustment + ledger append
		err := db.Transaction(func(tx *gorm.DB) error {
			// Single-statement increment: the write locks the row for the
			// rest of the transaction, so concurrent adjustments and
			// payments serialize instead of overwriting each other's
			// snapshot reads. A zero amount skips the write, MySQL reports
			// no affected rows for value-preserving updates.
			if amount != 0 {
				res := tx.Model(&domain.User{}).
					Where("id = ?", req.UserID).
					Update("balance", gorm.Expr("balance + ?", amount))
				if res.Error != nil {
					return res.Error // Return error to rollback
				}
				if res.RowsAffected == 0 {
					return domain.ErrUserNotFound // Target user does not exist
				}
			}
			// Read back the incremented balance; own writes are always
			// visible inside the transaction
			var updated domain.User
			if err := tx.First(&updated, req.UserID).Error; err != nil {
				return err // Return error to rollback
			}
			newBalance = updated.Balance
			applied := amount // Delta actually applied post-clamp
			if newBalance < 0 {
				applied = amount - newBalance // Only the portion above the floor counts
				newBalance = 0                // Clamp to zero rather than reject
				// Write the clamped balance
				if err := tx.Model(&domain.User{}).Where("id = ?", req.UserID).Update("balance", 0.0).Error; err != nil {
					return err // Return error to rollback
				}
			}
			// Record the applied delta so the ledger sums to the balance
			t := domain.Transaction{
				UserID: req.UserID,               // Owning user
				Amount: applied,                  // Signed applied amount
				Type:   domain.TxAdminAdjustment, // Transaction type
			}
			// Save transaction
			if err := tx.Create(&t).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Target user missing
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": req.UserID,  // Target user ID
				"amount":  amount,      // Requested adjustment
				"error":   err.Error(), // Error message
			}).Error("Balance adjustment failed") // Log adjustment failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Balance update failed"})
			return
		}
		// Log successful adjustment
		logrus.WithFields(logrus.Fields{
			"user_id":     req.UserID,                      // Target user ID
			"amount":      amount,                          // Requested adjustment
			"new_balance": newBalance,                      // Balance after the adjustment
			"type":        domain.TxAdminAdjustment,        // Transaction type
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Admin adjustment transaction") // Log adjustment success
		invalidateUserCaches(rdb, req.UserID) // Drop stale cached views
		// Return the new balance
		c.JSON(http.StatusOK, gin.H{"message": "Balance updated", "new_balance": newBalance})
	}
}

// ExportDBHandler returns every user's full record for backup purposes.
// Credentials are bcrypt hashes, so the dump never contains cleartext
// passwords.
func ExportDBHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []domain.User // Slice to hold users
		if err := db.Find(&users).Error; err != nil {
			// Unexpected store errors surface as a generic message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
			return
		}
		// Map users to full export records
		data := make([]UserExportRecord, len(users))
		for i, u := range users {
			data[i] = UserExportRecord{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Password: u.Password, // Stored hash
				Balance:  u.Balance,  // Current balance
				Role:     u.Role,     // User role
			}
		}
		// Return the dump with a count and label
		c.JSON(http.StatusOK, gin.H{
			"info":        "Ledger service backup", // Static backup label
			"total_users": len(data),               // Record count
			"data":        data,                    // Full records
		})
	}
}

// MakeAdminHandler elevates a user to the admin role. Runs behind the admin
// token chain like every other privileged operation; responses stay plain
// text for compatibility.
func MakeAdminHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.ToLower(c.Param("username")) // Target username, normalized
		var user domain.User                             // Fetch user from database
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			// If user not found, return plain text not found
			c.String(http.StatusNotFound, "Not found")
			return
		}
		// Set the role to admin
		if err := db.Model(&user).Update("role", "admin").Error; err != nil {
			// Unexpected store errors surface as a generic message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}
		// Log the elevation: role changes are audit-relevant
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // Elevated user ID
			"username": user.Username, // Elevated username
		}).Info("Role elevated to admin") // Log role elevation
		invalidateUserCaches(rdb, user.ID) // Drop stale cached views
		// Return plain text success
		c.String(http.StatusOK, "User "+username+" is now an admin")
	}
}

// ListTransactionsHandler returns ledger rows, with optional filtering by
// user, type, or creation time, paginated and cached
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := utils.AdminTxsPrefix + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total number of transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize          // Calculate offset for pagination
		query := db.Model(&domain.Transaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by owning user
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start time
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end time
		}
		var total int64 // Total transaction count
		// Get total count of transactions matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txs,        // List of transactions
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of transactions
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
