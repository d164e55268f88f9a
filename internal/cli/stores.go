package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"quiz-client/internal/config"
	"quiz-client/internal/infra/memory"
	pgstore "quiz-client/internal/infra/postgres"
	redisstore "quiz-client/internal/infra/redis"
	"quiz-client/internal/infra/sqlite"
	"quiz-client/internal/storage"
)

// openStore builds the configured storage backend. The returned close
// function releases its connections.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("memory storage selected, high scores will not survive exit")
		return memory.NewStore(), func() {}, nil

	case config.DriverSQLite, "":
		store, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("path", cfg.Storage.Path).Msg("sqlite storage opened")
		return store, func() { _ = store.Close() }, nil

	case config.DriverRedis:
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis addr not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewStore(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
