package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a bearer token in the
// Authorization header and rejects the request with 401 otherwise.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", string(claims.Role))

		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a token is supplied but
// lets anonymous requests through. Read endpoints are public, write
// endpoints behind AuthMiddleware stay authenticated.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		if claims, err := authService.ValidateToken(parts[1]); err == nil {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("role", string(claims.Role))
		}

		c.Next()
	}
}

// RequireRole checks if the user has the specified role
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "role not found in token"})
			c.Abort()
			return
		}

		userRole, ok := roleValue.(string)
		if !ok || models.Role(userRole) != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// CallerIdentity pulls the authenticated identity out of the gin context.
// ok is false for anonymous requests.
func CallerIdentity(c *gin.Context) (userID string, role models.Role, ok bool) {
	idValue, exists := c.Get("user_id")
	if !exists {
		return "", "", false
	}
	userID, _ = idValue.(string)

	roleValue, _ := c.Get("role")
	roleStr, _ := roleValue.(string)

	return userID, models.Role(roleStr), userID != ""
}
