// file: database/redis.go
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/assessment-hisan/auction-backend/config"
	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil, nil when no address is configured; callers treat a
// nil client as "Redis disabled".
func InitRedis(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		log.Info("redis disabled, running single-instance")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("redis connection established", "addr", cfg.Addr)
	return rdb, nil
}
