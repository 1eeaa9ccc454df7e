package storage

import (
	"context"
	"fmt"

	"github.com/example/kanban-task-service/config"
	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Open builds the store selected by cfg, wrapped in the Redis cache when
// REDIS_ADDR is set.
func Open(ctx context.Context, cfg *config.Config, logger types.Logger) (domain.Store, error) {
	var (
		store domain.Store
		err   error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err = OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		store, err = OpenSQLite(cfg.DBPath, cfg.DBDebug)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Task cache enabled", "redis", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	return NewCachedStore(store, client, cfg.CacheTTL, logger), nil
}

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks store's connection when it supports it.
func Ping(ctx context.Context, store domain.Store) error {
	switch s := store.(type) {
	case *CachedStore:
		if err := s.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return Ping(ctx, s.inner)
	case Pinger:
		return s.Ping(ctx)
	}
	return nil
}
