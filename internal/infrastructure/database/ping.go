package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	pingAttempts = 5
	pingTimeout  = 5 * time.Second
)

// pingWithRetry waits for a backing store that may still be starting,
// e.g. under docker compose.
func pingWithRetry(log *zap.Logger, store string, backoff time.Duration, ping func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = ping(ctx)
		cancel()
		if err == nil {
			log.Info("connected", zap.String("store", store), zap.Int("attempt", attempt))
			return nil
		}
		log.Warn("ping failed", zap.String("store", store), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < pingAttempts {
			time.Sleep(backoff * time.Duration(attempt))
		}
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", store, pingAttempts, err)
}
