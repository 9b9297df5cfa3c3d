package revocation

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevoke_IsRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	l := NewList(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()
	token := "access-token-1"

	require.NoError(t, l.Revoke(ctx, token, 2*time.Second))
	ok, err := l.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// the raw token never appears as a key
	for _, k := range m.Keys() {
		require.NotContains(t, k, token)
	}

	m.FastForward(3 * time.Second)
	ok, err = l.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevoke_NoClientIsNoop(t *testing.T) {
	l := NewList(nil)
	ctx := context.Background()
	require.False(t, l.Enabled())
	require.NoError(t, l.Revoke(ctx, "t", time.Second))
	ok, err := l.IsRevoked(ctx, "t")
	require.NoError(t, err)
	require.False(t, ok)
}
