package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// RevocationChecker reports tokens that were logged out before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Principal is the verified identity of the caller. Email is the only
// identity used for writes; request bodies never override it.
type Principal struct {
	Email         string
	Subject       string
	Name          string
	EmailVerified bool
	Claims        map[string]interface{}
	Token         string
}

const principalKey = "principal"

// Error bodies for the two rejection kinds.
var (
	errNoToken      = gin.H{"error": "Unauthorized: No token"}
	errInvalidToken = gin.H{"error": "Forbidden: Invalid token"}
)

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || strings.ContainsAny(raw, " \t") {
		return "", false
	}
	return raw, true
}

// AuthMiddleware verifies Bearer tokens. A missing or malformed header is 401,
// a present but invalid, expired or revoked token is 403.
func AuthMiddleware(ver Verifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errNoToken)
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusForbidden, errInvalidToken)
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, errInvalidToken)
			return
		}
		p := principalFromClaims(claims)
		if p.Email == "" {
			logger.Debugf("token for sub=%q carries no email claim", p.Subject)
			c.AbortWithStatusJSON(http.StatusForbidden, errInvalidToken)
			return
		}

		if revoked != nil {
			gone, err := revoked.IsRevoked(c.Request.Context(), token)
			if err != nil {
				logger.Errorf("revocation check failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Token check failed"})
				return
			}
			if gone {
				c.AbortWithStatusJSON(http.StatusForbidden, errInvalidToken)
				return
			}
		}

		p.Token = token
		c.Set("claims", claims)
		c.Set(principalKey, p)
		c.Next()
	}
}

func principalFromClaims(claims map[string]interface{}) *Principal {
	p := &Principal{Claims: claims}
	p.Email, _ = claims["email"].(string)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Subject, _ = claims["sub"].(string)
	p.Name, _ = claims["name"].(string)
	p.EmailVerified, _ = claims["email_verified"].(bool)
	return p
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}
