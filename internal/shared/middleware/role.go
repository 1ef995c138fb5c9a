package middleware

import (
	"github.com/gin-gonic/gin"

	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/response"
)

// RequirePermission gates a route on a single capability.
// Must run after AuthMiddleware. Authenticated users with the wrong
// role get an explicit 403, not a degraded view.
func RequirePermission(perm usermodel.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !role.Can(perm) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
