package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
)

// RoleChecker looks up role membership for an email.
type RoleChecker interface {
	HasRole(ctx context.Context, email, role string) (bool, error)
}

// RequireRole must run after AuthMiddleware.
func RequireRole(rc RoleChecker, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errNoToken)
			return
		}
		has, err := rc.HasRole(c.Request.Context(), p.Email, role)
		if err != nil {
			logger.Errorf("role lookup for %s failed: %v", p.Email, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if !has {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: " + role + " only"})
			return
		}
		c.Next()
	}
}
