package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/lib/pq"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Action identifiers a client renders as buttons on a notification.
const (
	ActionOpenConnection = "open_connection"
	ActionDismiss        = "dismiss"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	publisher        events.Publisher
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	publisher events.Publisher,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// FireRequest describes a notification to deliver to a user's inbox.
type FireRequest struct {
	UserID       string
	ConnectionID string
	Kind         domain.NotificationKind
	Title        string
	Body         string
	Actions      []string
}

// Fire stores the notification and pushes it to live subscribers.
func (uc *NotificationUseCase) Fire(ctx context.Context, req FireRequest) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:       req.UserID,
		ConnectionID: req.ConnectionID,
		Kind:         req.Kind,
		Title:        req.Title,
		Body:         req.Body,
		Actions:      pq.StringArray(req.Actions),
	}
	if n.Actions == nil {
		n.Actions = pq.StringArray{}
	}
	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if uc.publisher != nil {
		uc.publisher.Publish(events.Event{
			Type:   events.NotificationCreated,
			UserID: n.UserID,
			Data:   n,
			At:     time.Now().UTC(),
		})
	}
	return n, nil
}

// List returns the newest notifications first.
func (uc *NotificationUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	items, err := uc.notificationRepo.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return items, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	return uc.notificationRepo.MarkRead(ctx, userID, id)
}
