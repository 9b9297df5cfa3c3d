package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestImageExt(t *testing.T) {
	ext, ok := ImageExt("image/PNG; charset=binary")
	require.True(t, ok)
	require.Equal(t, ".png", ext)
	_, ok = ImageExt("application/pdf")
	require.False(t, ok)
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	a := ObjectKey("logos", ".png", now)
	b := ObjectKey("logos", ".png", now)
	require.True(t, strings.HasPrefix(a, "logos/2024/03/"))
	require.True(t, strings.HasSuffix(a, ".png"))
	require.NotEqual(t, a, b)
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	_, err := s.URL(ctx, "missing")
	require.Error(t, err)

	require.NoError(t, s.Put(ctx, "logos/a.png", strings.NewReader("png"), 3, "image/png"))
	u, err := s.URL(ctx, "logos/a.png")
	require.NoError(t, err)
	require.Equal(t, "memory://logos/a.png", u)
	b, ct, ok := s.Object("logos/a.png")
	require.True(t, ok)
	require.Equal(t, "png", string(b))
	require.Equal(t, "image/png", ct)
}

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{})
	require.Error(t, err)
}
