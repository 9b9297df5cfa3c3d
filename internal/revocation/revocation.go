// Package revocation keeps a Redis list of bearer tokens that were logged out
// before they expired.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// List is safe to use with a nil client; every operation is then a no-op.
type List struct {
	client *redis.Client
	prefix string
}

func NewList(client *redis.Client) *List {
	return &List{client: client, prefix: "revoked:access:"}
}

// tokens are stored hashed so the key space never holds usable credentials
func (l *List) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return l.prefix + hex.EncodeToString(sum[:])
}

// Revoke stores the token until ttl elapses. Non-positive ttls are ignored.
func (l *List) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if l == nil || l.client == nil || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, l.key(token), "1", ttl).Err()
}

// IsRevoked returns true when the token was revoked and has not expired yet.
func (l *List) IsRevoked(ctx context.Context, token string) (bool, error) {
	if l == nil || l.client == nil {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Enabled reports whether revocations are persisted.
func (l *List) Enabled() bool { return l != nil && l.client != nil }
