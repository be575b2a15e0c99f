package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/clients/redis"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/platform/neo4jdb"
)

type Clients struct {
	Relay      ledger.Relay
	StatsCache redis.StatsCache
	Neo4j      *neo4jdb.Client
}

// wireClients connects the optional external systems. Only a broken Neo4j or
// Redis configuration is fatal; an unreachable chain leaves the relay not
// ready so submissions are stored off-chain only.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	out := Clients{StatsCache: redis.NopStatsCache{}}

	if cfg.Redis.Addr != "" {
		cache, err := redis.NewStatsCache(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.StatsTTL,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis stats cache: %w", err)
		}
		out.StatsCache = cache
	}

	graph, err := neo4jdb.New(neo4jdb.Config{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}, log)
	if err != nil {
		out.Close(ctx)
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	out.Neo4j = graph

	out.Relay = wireRelay(ctx, log, cfg.Relay)
	return out, nil
}

func wireRelay(ctx context.Context, log *logger.Logger, cfg RelayConfig) ledger.Relay {
	if cfg.RPCURL == "" {
		log.Warn("ETHEREUM_RPC_URL not set, ledger relay disabled")
		return ledger.Unavailable{}
	}
	relay := ledger.NewRPCRelay(ledger.Config{
		URL:        cfg.RPCURL,
		PrivateKey: cfg.PrivateKey,
		PulseNet:   cfg.PulseNet,
		PulseToken: cfg.PulseToken,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}, log)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := relay.Init(initCtx); err != nil {
		log.Warn("ledger relay not ready, continuing off-chain only", "error", err)
	}
	return relay
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.StatsCache != nil {
		_ = c.StatsCache.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
	if rc, ok := c.Relay.(interface{ Close() }); ok {
		rc.Close()
	}
}
