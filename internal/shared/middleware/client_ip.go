package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/utils"
)

type clientIPKey struct{}

// ClientIPMiddleware extracts the client IP and injects it into both the
// gin context and the request context, so services can stamp audit
// records with the origin address without touching HTTP types.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set("client_ip", clientIP)

		ctx := context.WithValue(c.Request.Context(), clientIPKey{}, clientIP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetClientIPFromContext retrieves the client IP from a request context.
// Returns empty string if not found.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
