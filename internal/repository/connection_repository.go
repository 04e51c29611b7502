package repository

import (
	"context"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

// ConnectionRepository persists exchange records. Create performs no
// duplicate check; callers consult GetByUsers first. Partial updates and
// Delete return domain.ErrConnectionNotFound when the id is gone.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	GetByUsers(ctx context.Context, userID, connectedUserID string) (*domain.Connection, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Connection, error)
	UpdateNotes(ctx context.Context, id, notes string) error
	UpdateEvent(ctx context.Context, id, name, location string) error
	UpdateProfileSnapshot(ctx context.Context, id string, snapshot domain.ProfileSnapshot) error
	Delete(ctx context.Context, id string) error
}
