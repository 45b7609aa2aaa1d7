package middleware

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/auth"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	KeyUserID = "userID"
	KeyRole   = "role"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			Logger(c).WithError(err).Info("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Set(keyLogger, Logger(c).WithFields(log.Fields{"user_id": claims.UserID, "role": claims.Role}))

		c.Next()
	}
}

// RequireAccess lets the request through only when the caller's role may
// reach resource.
func RequireAccess(resource auth.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CanAccess(Role(c), resource) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}

// AllowIPs restricts a route to the given client addresses. An empty list
// allows everyone.
func AllowIPs(ips []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			allowed[ip] = true
		}
	}
	return func(c *gin.Context) {
		if len(allowed) > 0 && !allowed[c.ClientIP()] {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user, or 0 before AuthMiddleware ran.
func UserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}

// Role returns the authenticated role, or "" before AuthMiddleware ran.
func Role(c *gin.Context) string {
	return c.GetString(KeyRole)
}
