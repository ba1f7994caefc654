package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TranKhoaa/AITChatbot/internal/services/auth"
)

type BearerTokenMiddleware struct {
	authService *auth.AuthService
}

func NewBearerTokenMiddleware(authService *auth.AuthService) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{authService: authService}
}

// BearerTokenAuthMiddleware validates the JWT access token and sets the
// admin id in the request context
func (m *BearerTokenMiddleware) BearerTokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// If admin_id is already set, skip authentication
		_, exists := c.Get("admin_id")
		if exists {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if qt := c.Query("token"); qt != "" {
			// EventSource cannot set headers, so SSE clients pass the token
			// as a query parameter.
			tokenString = qt
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)

		c.Next()
	}
}
