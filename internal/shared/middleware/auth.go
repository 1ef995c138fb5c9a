package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/response"
	"library-backend/pkg/jwt"
)

// Context keys set by AuthMiddleware
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxUserEmail = "userEmail"
)

// AuthMiddleware authenticates the request from a Bearer access token.
// Missing or invalid credentials always produce 401, never a silent pass.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		role := usermodel.Role(claims.Role)
		if !role.IsValid() {
			response.Unauthorized(c, "invalid role in token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, role)
		c.Set(CtxUserEmail, claims.Email)

		c.Next()
	}
}

// GetUserID reads the authenticated user's ID from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole reads the authenticated user's role from the gin context
func GetUserRole(c *gin.Context) (usermodel.Role, bool) {
	v, exists := c.Get(CtxUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(usermodel.Role)
	return role, ok
}
