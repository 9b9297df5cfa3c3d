package tokens

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/newsdesk/newsdesk-server/internal/oidc"
)

// MintDevToken creates an HS256 token accepted by oidc.HMACVerifier.
// Used by cmd/devtoken and tests; production config rejects the dev secret.
func MintDevToken(secret, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))
	claims := jwt.MapClaims{
		"iss":            oidc.DevIssuer,
		"sub":            email,
		"email":          email,
		"email_verified": true,
		"name":           name,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}
