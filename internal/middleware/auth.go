package middleware

import (
	"net/http"
	"strings"

	"marketplace-auth/internal/token"
	"marketplace-auth/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware guards routes behind a bearer access token. The decoded
// user id lands in the context under "userID".
func AuthMiddleware(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccess(parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)

		c.Next()
	}
}
