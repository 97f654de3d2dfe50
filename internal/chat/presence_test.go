package chat

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func bootstrapPresence(t *testing.T) *Presence {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })

	return NewPresence(rdb, 30*time.Second, zap.NewNop().Sugar())
}

func TestPresenceLifecycle(t *testing.T) {
	p := bootstrapPresence(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	online, err := p.IsOnline(ctx, userID)
	require.NoError(t, err)
	require.False(t, online)

	p.MarkOnline(ctx, userID)
	online, err = p.IsOnline(ctx, userID)
	require.NoError(t, err)
	require.True(t, online)

	p.Refresh(ctx, userID)

	p.MarkOffline(ctx, userID)
	online, err = p.IsOnline(ctx, userID)
	require.NoError(t, err)
	require.False(t, online)
}
