package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	var s domain.UserSettings
	query := `
		SELECT user_id, location_sharing, push_enabled, notify_new_connection,
		       notify_follow_up, follow_up_value, follow_up_unit, updated_at
		FROM user_settings WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *domain.UserSettings) error {
	query := `
		INSERT INTO user_settings (
			user_id, location_sharing, push_enabled, notify_new_connection,
			notify_follow_up, follow_up_value, follow_up_unit
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			location_sharing = EXCLUDED.location_sharing,
			push_enabled = EXCLUDED.push_enabled,
			notify_new_connection = EXCLUDED.notify_new_connection,
			notify_follow_up = EXCLUDED.notify_follow_up,
			follow_up_value = EXCLUDED.follow_up_value,
			follow_up_unit = EXCLUDED.follow_up_unit,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		s.UserID, s.LocationSharing, s.PushEnabled, s.NotifyNewConnection,
		s.NotifyFollowUp, s.FollowUpValue, s.FollowUpUnit,
	).Scan(&s.UpdatedAt)
}
