package middleware

import (
	"ledger_service/internal/utils" // Token utility functions
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminTokenMiddleware validates the X-Admin-Token header and extracts the
// calling user. The header carries a per-caller issued token, not a shared
// secret, so a stolen dump of the source grants nothing.
func AdminTokenMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("X-Admin-Token") // Get the admin token header
		// Check if the token header is present
		if tokenStr == "" {
			// If not, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		claims, err := utils.ParseToken(tokenStr, secret) // Parse the token
		if err != nil {
			// If parsing fails (bad signature, expired), abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()                       // Proceed to the next handler
	}
}
