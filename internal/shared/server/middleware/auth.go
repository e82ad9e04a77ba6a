package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/auth"
	"jobbuddy-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	usernameKey = "username"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth validates bearer JWTs and stores the caller identity in context.
// Requests whose path starts with one of publicPrefixes pass through unauthenticated.
func Auth(verifier TokenVerifier, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" || verifier == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Username != "" {
			c.Set(usernameKey, claims.Username)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UsernameFromContext fetches the username set by the auth middleware.
func UsernameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(usernameKey)
}
