package repository

import (
	"context"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	TouchLastSeen(ctx context.Context, id string) error
}
