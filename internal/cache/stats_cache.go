package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mockinterview/internal/model"
)

// StatsCache keeps aggregates of completed sessions, which no longer change
type StatsCache interface {
	Set(ctx context.Context, stats *model.SessionStats) error
	Get(ctx context.Context, sessionID string) (*model.SessionStats, error)
	Delete(ctx context.Context, sessionID string) error
}

type statsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	return &statsCache{
		client: client,
		ttl:    ttl,
	}
}

func statsKey(sessionID string) string {
	return fmt.Sprintf("stats:session:%s", sessionID)
}

func (c *statsCache) Set(ctx context.Context, stats *model.SessionStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(stats.SessionID), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *statsCache) Get(ctx context.Context, sessionID string) (*model.SessionStats, error) {
	data, err := c.client.Get(ctx, statsKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats model.SessionStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *statsCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, statsKey(sessionID)).Err()
}

type noopStatsCache struct{}

// NewNoopStatsCache disables stats caching
func NewNoopStatsCache() StatsCache {
	return noopStatsCache{}
}

func (noopStatsCache) Set(context.Context, *model.SessionStats) error { return nil }

func (noopStatsCache) Get(context.Context, string) (*model.SessionStats, error) { return nil, nil }

func (noopStatsCache) Delete(context.Context, string) error { return nil }
