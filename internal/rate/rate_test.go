package rate

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 15, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Hour)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Equal(t, 45*time.Minute, res.RetryAfter)

	// Otra clave tiene su propio contador.
	res, err = l.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// Nueva ventana.
	now = now.Add(time.Hour)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
}

func TestNew_SelectsBackend(t *testing.T) {
	_, ok := New(Config{Max: 1, Window: time.Minute}).(*MemoryLimiter)
	assert.True(t, ok)
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL_TEST")
	if url == "" {
		t.Skip("REDIS_URL_TEST not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	l := NewRedisLimiter(client, "rl-test:", 1, time.Hour)
	key := "k-" + time.Now().Format("150405.000000")

	res, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}
