package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/revocation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "Test@Example.com", "name": "Test"}}, nil
	case "noemail":
		return &fakeToken{data: map[string]interface{}{"sub": "user2"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serveAuth(t *testing.T, header string, revoked RevocationChecker) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, revoked), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		_, hasClaims := c.Get("claims")
		c.JSON(http.StatusOK, gin.H{"email": p.Email, "name": p.Name, "claims": hasClaims})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serveAuth(t, "", nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.JSONEq(t, `{"error":"Unauthorized: No token"}`, rw.Body.String())
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Bearer ", "Basic abc", "Bearer a b"} {
		rw := serveAuth(t, h, nil)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rw := serveAuth(t, "Bearer forged", nil)
	require.Equal(t, http.StatusForbidden, rw.Code)
	require.JSONEq(t, `{"error":"Forbidden: Invalid token"}`, rw.Body.String())
}

func TestAuthMiddleware_TokenWithoutEmail(t *testing.T) {
	rw := serveAuth(t, "Bearer noemail", nil)
	require.Equal(t, http.StatusForbidden, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serveAuth(t, "Bearer goodtoken", nil)
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "test@example.com", got["email"])
	require.Equal(t, "Test", got["name"])
	require.Equal(t, true, got["claims"])
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	list := revocation.NewList(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	require.NoError(t, list.Revoke(context.Background(), "black-token", 5*time.Second))

	rw := serveAuth(t, "Bearer black-token", list)
	require.Equal(t, http.StatusForbidden, rw.Code)

	rw = serveAuth(t, "Bearer goodtoken", list)
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	require.True(t, ok)
	require.Equal(t, "abc.def", tok)
	_, ok = BearerToken("bearer abc")
	require.False(t, ok)
}
