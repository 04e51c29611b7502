// Package cache provides Redis read-through decorators for repositories.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultProfileTTL = 10 * time.Minute

type profileCache struct {
	next   repository.ProfileRepository
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewProfileCache wraps a profile repository with a Redis cache. Cache
// failures are logged and fall through to the wrapped repository.
func NewProfileCache(next repository.ProfileRepository, client *redis.Client, ttl time.Duration, log *zap.Logger) repository.ProfileRepository {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &profileCache{next: next, client: client, ttl: ttl, log: log}
}

func profileKey(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

func (c *profileCache) Create(ctx context.Context, profile *domain.Profile) error {
	if err := c.next.Create(ctx, profile); err != nil {
		return err
	}
	c.invalidate(ctx, profile.ID)
	return nil
}

func (c *profileCache) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	raw, err := c.client.Get(ctx, profileKey(id)).Bytes()
	if err == nil {
		var p domain.Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		c.invalidate(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("profile cache read failed", zap.String("profile_id", id), zap.Error(err))
	}

	p, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, profileKey(id), data, c.ttl).Err(); err != nil {
			c.log.Warn("profile cache write failed", zap.String("profile_id", id), zap.Error(err))
		}
	}
	return p, nil
}

func (c *profileCache) Update(ctx context.Context, profile *domain.Profile) error {
	if err := c.next.Update(ctx, profile); err != nil {
		return err
	}
	c.invalidate(ctx, profile.ID)
	return nil
}

func (c *profileCache) TouchLastSeen(ctx context.Context, id string) error {
	if err := c.next.TouchLastSeen(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *profileCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, profileKey(id)).Err(); err != nil {
		c.log.Warn("profile cache invalidation failed", zap.String("profile_id", id), zap.Error(err))
	}
}
