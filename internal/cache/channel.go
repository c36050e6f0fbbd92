// Package cache holds short-lived Redis caches for platform lookups that are
// expensive in API quota. Every method degrades to a miss on Redis errors so
// callers never fail because the cache is down.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"commentflow.app/engine/internal/platform"
)

// ChannelCache stores resolved channel metadata per account. Channel lookups
// cost a channels.list unit on every sync cycle even though the answer almost
// never changes, so a TTL cache in front saves most of that quota.
type ChannelCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewChannelCache(client *redis.Client, ttl time.Duration) *ChannelCache {
	return &ChannelCache{client: client, ttl: ttl}
}

func (c *ChannelCache) Get(ctx context.Context, accountID int64) (*platform.Channel, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, channelKey(accountID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "channel cache read failed", "account_id", accountID, "error", err)
		}
		return nil, false
	}

	var channel platform.Channel
	if err := json.Unmarshal(data, &channel); err != nil {
		slog.WarnContext(ctx, "channel cache entry corrupt, dropping", "account_id", accountID, "error", err)
		c.Invalidate(ctx, accountID)
		return nil, false
	}
	return &channel, true
}

func (c *ChannelCache) Set(ctx context.Context, accountID int64, channel *platform.Channel) {
	if c == nil || c.client == nil || channel == nil {
		return
	}

	data, err := json.Marshal(channel)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, channelKey(accountID), data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "channel cache write failed", "account_id", accountID, "error", err)
	}
}

func (c *ChannelCache) Invalidate(ctx context.Context, accountID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, channelKey(accountID)).Err(); err != nil {
		slog.WarnContext(ctx, "channel cache invalidate failed", "account_id", accountID, "error", err)
	}
}

func channelKey(accountID int64) string {
	return fmt.Sprintf("commentflow:channel:%d", accountID)
}
