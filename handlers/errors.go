package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/middleware"
)

// respondError writes {error: msg} with the status for err's kind.
// Internal errors are logged and reported with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.Message(err, fallback)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// guard answers authorization questions that depend on the path, not just the route.
type guard struct {
	roles middleware.RoleChecker
}

func (g guard) isAdmin(c *gin.Context) (bool, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return false, nil
	}
	return g.roles.HasRole(c.Request.Context(), p.Email, models.RoleAdmin)
}

// selfOrAdmin aborts with 403 unless the caller is email or an admin.
func (g guard) selfOrAdmin(c *gin.Context, email string) bool {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token"})
		return false
	}
	if p.Email == models.NormalizeEmail(email) {
		return true
	}
	admin, err := g.isAdmin(c)
	if err != nil {
		respondError(c, err, "Server error")
		c.Abort()
		return false
	}
	if !admin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your account"})
		return false
	}
	return true
}

// caller returns the principal email; routes using it sit behind AuthMiddleware.
func caller(c *gin.Context) string {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return p.Email
	}
	return ""
}
