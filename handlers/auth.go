package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/newsdesk/newsdesk-server/internal/apperr"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/revocation"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/middleware"
)

// AuthHandler exposes the verified identity. Sign-in itself happens at the identity provider.
type AuthHandler struct {
	users   *users.Service
	revoked *revocation.List
	now     func() time.Time
}

func NewAuthHandler(u *users.Service, revoked *revocation.List) *AuthHandler {
	return &AuthHandler{users: u, revoked: revoked, now: time.Now}
}

// Register routes under /auth
func (h *AuthHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	a := r.Group("/auth", auth)
	a.GET("/me", h.Me)
	a.POST("/logout", h.Logout)
}

// Me returns the principal and the stored profile, which may not exist yet.
func (h *AuthHandler) Me(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	ctx := c.Request.Context()
	u, err := h.users.Get(ctx, p.Email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		respondError(c, err, "Server error")
		return
	}
	admin, err := h.users.HasRole(ctx, p.Email, models.RoleAdmin)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":   p.Email,
		"name":    p.Name,
		"sub":     p.Subject,
		"isAdmin": admin,
		"user":    u,
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	if !h.revoked.Enabled() {
		c.JSON(http.StatusOK, gin.H{"success": true, "revoked": false})
		return
	}
	ttl := time.Until(tokenExpiry(p.Token, p.Claims, h.now()))
	if err := h.revoked.Revoke(c.Request.Context(), p.Token, ttl); err != nil {
		logger.Errorf("revoke token for %s: %v", p.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "revoked": ttl > 0})
}

// tokenExpiry reads exp from the already verified token. Tokens without exp are
// revoked for a day.
func tokenExpiry(raw string, claims map[string]interface{}, now time.Time) time.Time {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err == nil {
		if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if v, ok := claims["exp"].(float64); ok {
		return time.Unix(int64(v), 0)
	}
	return now.Add(24 * time.Hour)
}
