package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/entitlement"
	"github.com/PeaceIshola/eduhub/core/subscription"
)

// RedisSnapshotCache caches per-user entitlement snapshots in redis with a
// bounded TTL. Staleness is limited to the TTL; mutations invalidate eagerly.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ entitlement.SnapshotCache     = (*RedisSnapshotCache)(nil)
	_ subscription.CacheInvalidator = (*RedisSnapshotCache)(nil)
)

func NewRedisSnapshotCache(ctx context.Context, conf *core.Config) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisSnapshotCache{client: client, ttl: conf.Entitlement.CacheTTL}, nil
}

func snapshotKey(userID string) string {
	return "entitlement:snapshot:" + userID
}

func (c *RedisSnapshotCache) GetSnapshot(ctx context.Context, userID string) (entitlement.Snapshot, bool, error) {
	var snap entitlement.Snapshot
	val, err := c.client.Get(ctx, snapshotKey(userID)).Result()
	if err == redis.Nil {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, errors.Wrap(err, "getting snapshot")
	}
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return snap, false, errors.Wrap(err, "decoding snapshot")
	}
	return snap, true, nil
}

func (c *RedisSnapshotCache) SetSnapshot(ctx context.Context, userID string, snap entitlement.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := c.client.Set(ctx, snapshotKey(userID), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "setting snapshot")
	}
	return nil
}

func (c *RedisSnapshotCache) InvalidateUser(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		return errors.Wrap(err, "invalidating snapshot")
	}
	return nil
}

func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
