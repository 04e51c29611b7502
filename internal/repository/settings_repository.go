package repository

import (
	"context"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, settings *domain.UserSettings) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
