package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type staticRoles map[string]bool

func (s staticRoles) HasRole(_ context.Context, email, role string) (bool, error) {
	if email == "broken@example.com" {
		return false, errors.New("db down")
	}
	return s[email+"/"+role], nil
}

func serveAdmin(header string) *httptest.ResponseRecorder {
	g := gin.New()
	roles := staticRoles{"test@example.com/admin": true}
	g.GET("/admin", AuthMiddleware(&roleVerifier{}, nil), RequireRole(roles, "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

// roleVerifier treats the raw token as the caller's email.
type roleVerifier struct{}

func (roleVerifier) Verify(_ context.Context, raw string) (Token, error) {
	return &fakeToken{data: map[string]interface{}{"sub": raw, "email": raw}}, nil
}

func TestRequireRole(t *testing.T) {
	require.Equal(t, http.StatusNoContent, serveAdmin("Bearer test@example.com").Code)
	require.Equal(t, http.StatusForbidden, serveAdmin("Bearer reader@example.com").Code)
	require.Equal(t, http.StatusInternalServerError, serveAdmin("Bearer broken@example.com").Code)
	require.Equal(t, http.StatusUnauthorized, serveAdmin("").Code)
}

func TestRequireRole_WithoutAuthMiddleware(t *testing.T) {
	g := gin.New()
	g.GET("/", RequireRole(staticRoles{}, "admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}
