package app

import (
	"context"
	"fmt"

	"github.com/yungbote/pulsenet-backend/internal/data/db"
	"github.com/yungbote/pulsenet-backend/internal/data/graph"
	"github.com/yungbote/pulsenet-backend/internal/data/kv"
	"github.com/yungbote/pulsenet-backend/internal/data/repos"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/registry"
	"github.com/yungbote/pulsenet-backend/internal/store"
)

// Storage is the opened off-chain store and registration registry together
// with whatever owns their connections.
type Storage struct {
	Store    *store.Store
	Registry *registry.Registry

	sql     *db.Service
	leveldb *kv.DB
}

func wireStorage(ctx context.Context, log *logger.Logger, cfg StorageConfig, clients Clients) (*Storage, error) {
	log.Info("Wiring storage...", "driver", cfg.Driver)
	out := &Storage{}

	var (
		subLog  store.Log
		backend registry.Backend
	)
	switch cfg.Driver {
	case "memory":
		subLog = store.NewMemoryLog()
		backend = registry.NewMemoryBackend()
	case "sqlite", "postgres":
		svc, err := db.NewService(db.Config{
			Driver:           cfg.Driver,
			SQLitePath:       cfg.SQLitePath,
			PostgresHost:     cfg.PostgresHost,
			PostgresPort:     cfg.PostgresPort,
			PostgresUser:     cfg.PostgresUser,
			PostgresPassword: cfg.PostgresPassword,
			PostgresName:     cfg.PostgresName,
			PostgresSSLMode:  cfg.PostgresSSLMode,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init %s: %w", cfg.Driver, err)
		}
		out.sql = svc
		subLog = repos.NewSubmissionLog(svc.DB(), log)
		backend = repos.NewRegistrationBackend(svc.DB(), log)
	case "leveldb":
		ldb, err := kv.Open(cfg.LevelDBPath, log)
		if err != nil {
			return nil, fmt.Errorf("init leveldb: %w", err)
		}
		out.leveldb = ldb
		subLog = ldb.SubmissionLog()
		backend = ldb.RegistrationBackend()
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	st, err := store.Open(ctx, subLog, log)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("open off-chain store: %w", err)
	}
	out.Store = st

	var projectors []registry.Projector
	if clients.Neo4j != nil {
		identity := graph.NewIdentityGraph(clients.Neo4j, log)
		identity.EnsureSchema(ctx)
		projectors = append(projectors, identity)
	}
	reg, err := registry.Open(ctx, backend, log, projectors...)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("open registration registry: %w", err)
	}
	out.Registry = reg
	return out, nil
}

func (s *Storage) Close() {
	if s == nil {
		return
	}
	if s.sql != nil {
		_ = s.sql.Close()
	}
	if s.leveldb != nil {
		_ = s.leveldb.Close()
	}
}
