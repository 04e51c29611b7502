package database

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPingWithRetry_RecoversAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calls := 0
	err := pingWithRetry(zap.New(core), "postgres", 0, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logs.FilterMessage("ping failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("connected").Len())
}

func TestPingWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := pingWithRetry(zap.NewNop(), "redis", 0, func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unreachable")
	assert.Equal(t, pingAttempts, calls)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisClient(&config.RedisConfig{Host: mr.Host(), Port: port}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
