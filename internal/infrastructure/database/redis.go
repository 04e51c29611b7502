package database

import (
	"context"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient builds the client shared by the profile cache and the
// follow-up scheduler and waits until Redis answers.
func NewRedisClient(cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	log = log.With(zap.String("addr", cfg.GetAddr()), zap.Int("db", cfg.DB))
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingWithRetry(log, "redis", time.Second, ping); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
