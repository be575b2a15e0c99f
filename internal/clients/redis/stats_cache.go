package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

// StatsCache holds the last assembled platform statistics payload so that
// repeated reads skip the ledger round trip.
type StatsCache interface {
	Get(ctx context.Context, dest any) (bool, error)
	Set(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

type statsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

func NewStatsCache(cfg Config, log *logger.Logger) (StatsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = "pulsenet:stats"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &statsCache{
		log: log.With("service", "RedisStatsCache"),
		rdb: rdb,
		key: key,
		ttl: ttl,
	}, nil
}

func (c *statsCache) Get(ctx context.Context, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("stats cache entry undecodable, dropping", "error", err)
		_ = c.rdb.Del(ctx, c.key).Err()
		return false, nil
	}
	return true, nil
}

func (c *statsCache) Set(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *statsCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

func (c *statsCache) Close() error {
	return c.rdb.Close()
}

// NopStatsCache never hits.
type NopStatsCache struct{}

func (NopStatsCache) Get(ctx context.Context, dest any) (bool, error) { return false, nil }
func (NopStatsCache) Set(ctx context.Context, v any) error            { return nil }
func (NopStatsCache) Invalidate(ctx context.Context) error            { return nil }
func (NopStatsCache) Close() error                                    { return nil }
