package middleware

import (
	"strings"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID   = "userID"
	KeyUsername = "username"
	KeyRole     = "role"
)

// AuthMiddleware checks if the request carries a valid Bearer token
func AuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperror.NewUnauthorized("Authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortWith(c, apperror.NewUnauthorized("Authorization header must start with Bearer"))
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			abortWith(c, apperror.NewUnauthorized("Invalid or expired token"))
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUsername, claims.Username)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole is the single authorization check for role-restricted routes.
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(KeyRole)
		if !exists || role != allowedRole {
			abortWith(c, apperror.NewForbidden("You do not have permission to access this resource"))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, gin.H{
		"code":    err.Code,
		"message": err.Message,
	})
}
