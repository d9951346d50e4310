package middleware

import (
	"crypto/subtle" // Constant time comparison
	"net/http"      // HTTP status codes
	"strings"       // String manipulation

	"demo_wallet/internal/domain" // Error kinds
	"demo_wallet/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserIDKey is the context key holding the user id taken from a login token
const UserIDKey = "userID"

// AuthMiddleware admits requests carrying either the static bearer token or a login
// JWT. Only the JWT identifies the caller; the static token leaves UserIDKey unset.
func AuthMiddleware(staticToken, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" {
			abortUnauthorized(c, "No token provided")
			return
		}
		// Check if the Authorization header is properly formatted
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid token")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		if staticToken != "" && subtle.ConstantTimeCompare([]byte(tokenStr), []byte(staticToken)) == 1 {
			c.Next()
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Next()                        // Proceed to the next handler
	}
}

// TokenUserID returns the user id set by AuthMiddleware, if any
func TokenUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
		"error":   domain.KindAuthentication.String(),
	})
}
