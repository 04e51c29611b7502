package postgres

import (
	"context"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	query := `
		INSERT INTO notifications (id, user_id, connection_id, kind, title, body, actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		n.ID, n.UserID, n.ConnectionID, n.Kind, n.Title, n.Body, n.Actions,
	).Scan(&n.CreatedAt)
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	query := `
		SELECT id, user_id, connection_id, kind, title, body, actions, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &out, query, userID, limit, offset)
	return out, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if isMalformedID(err) {
		return domain.ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
