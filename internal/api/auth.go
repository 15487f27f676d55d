package api

import (
	"ledger_service/internal/config" // Application configuration
	"ledger_service/internal/domain" // Importing domain models
	"ledger_service/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"regexp"                         // Regular expressions
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest binds the registration payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest binds the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// ProfileResponse is the public view of a user returned by login and the
// profile query
type ProfileResponse struct {
	ID       uint    `json:"id"`       // User ID
	Username string  `json:"username"` // Username
	Role     string  `json:"role"`     // User role
	Balance  float64 `json:"balance"`  // Current balance
}

// LoginResponse is the profile plus the caller's issued token
type LoginResponse struct {
	ProfileResponse        // Embedded public profile
	Token           string `json:"token"` // Signed token for admin operations
}

// isValidUsername checks if the username contains only alphanumeric characters and underscores
func isValidUsername(username string) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z0-9_]+$`, username) // Regex to match allowed characters
	return matched                                               // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // Return true if length is valid
}

// RegisterHandler creates a new user with the configured initial balance.
// Public registration always produces role "user".
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails (missing fields), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}
		// Validate username shape
		if !isValidUsername(req.Username) {
			// If username is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be alphanumeric"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase username to ensure uniqueness, role "user"
		// and the deployment's initial balance policy
		user := domain.User{
			Username: strings.ToLower(req.Username), // Normalized username
			Password: string(hash),                  // Bcrypt hash
			Role:     "user",                        // Public registration is always a plain user
			Balance:  cfg.InitialBalance,            // Starting balance (0 unless configured)
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// If creation fails (duplicate username), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates a user and returns the public profile together
// with an issued token. The bcrypt comparison is constant-time.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", strings.ToLower(req.Username)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Issue a token for subsequent gated requests
		token, err := utils.GenerateToken(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the profile and the token in the response
		c.JSON(http.StatusOK, LoginResponse{
			ProfileResponse: ProfileResponse{
				ID:       user.ID,       // User ID
				Username: user.Username, // Username
				Role:     user.Role,     // User role
				Balance:  user.Balance,  // Current balance
			},
			Token: token, // Issued token
		})
	}
}
