package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Presence tracks which users currently hold at least one live connection.
// Keys carry a TTL so a crashed server's entries age out on their own;
// connected clients refresh the key from their heartbeat.
type Presence struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewPresence(rdb *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Presence {
	return &Presence{rdb: rdb, ttl: ttl, logger: logger}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// MarkOnline is best-effort: presence is advisory, so redis errors are
// logged and swallowed.
func (p *Presence) MarkOnline(ctx context.Context, userID int64) {
	if err := p.rdb.Set(ctx, presenceKey(userID), 1, p.ttl).Err(); err != nil {
		p.logger.Warnw("failed to mark user online", "user_id", userID, "error", err)
	}
}

// Refresh extends the TTL of an online user's presence key.
func (p *Presence) Refresh(ctx context.Context, userID int64) {
	if err := p.rdb.Expire(ctx, presenceKey(userID), p.ttl).Err(); err != nil {
		p.logger.Warnw("failed to refresh presence", "user_id", userID, "error", err)
	}
}

func (p *Presence) MarkOffline(ctx context.Context, userID int64) {
	if err := p.rdb.Del(ctx, presenceKey(userID)).Err(); err != nil {
		p.logger.Warnw("failed to mark user offline", "user_id", userID, "error", err)
	}
}

func (p *Presence) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := p.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
