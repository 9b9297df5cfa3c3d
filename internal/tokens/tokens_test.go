package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/newsdesk/newsdesk-server/internal/oidc"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-32-bytes-should-be-long-enough"

func TestMintDevToken_VerifiesAndCarriesEmail(t *testing.T) {
	raw, err := MintDevToken(secret, " Reader@Example.com ", "Reader", 2*time.Minute)
	require.NoError(t, err)

	tok, err := oidc.NewHMACVerifier(secret).Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "reader@example.com", claims["email"])
	require.Equal(t, "Reader", claims["name"])
	require.Equal(t, oidc.DevIssuer, claims["iss"])
}

func TestMintDevToken_ExpiredRejected(t *testing.T) {
	raw, err := MintDevToken(secret, "x@x.com", "X", -time.Minute)
	require.NoError(t, err)
	_, err = oidc.NewHMACVerifier(secret).Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestHMACVerifier_WrongSecretFails(t *testing.T) {
	raw, err := MintDevToken(secret, "bob@example.com", "Bob", time.Minute)
	require.NoError(t, err)
	_, err = oidc.NewHMACVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestHMACVerifier_RejectsForeignIssuerAndMissingExp(t *testing.T) {
	v := oidc.NewHMACVerifier(secret)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "someone-else", "email": "a@x.com", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), foreign)
	require.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": oidc.DevIssuer, "email": "a@x.com",
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), noExp)
	require.Error(t, err)
}

func TestHMACVerifier_AlgNoneRejected(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	tok := enc([]byte(`{"alg":"none","typ":"JWT"}`)) + "." +
		enc([]byte(`{"iss":"newsdesk-dev","email":"a@x.com","exp":9999999999}`)) + "."
	_, err := oidc.NewHMACVerifier(secret).Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestHMACVerifier_TamperedPayload(t *testing.T) {
	raw, err := MintDevToken(secret, "user@example.com", "User", 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), "user@", "admin@", 1)))
	_, err = oidc.NewHMACVerifier(secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestChain_FirstSuccessWins(t *testing.T) {
	raw, err := MintDevToken(secret, "a@x.com", "A", time.Minute)
	require.NoError(t, err)
	chain := oidc.Chain{oidc.NewHMACVerifier("wrong"), oidc.NewHMACVerifier(secret)}
	_, err = chain.Verify(context.Background(), raw)
	require.NoError(t, err)

	_, err = oidc.Chain{}.Verify(context.Background(), raw)
	require.Error(t, err)
}
