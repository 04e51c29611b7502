package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"go.uber.org/zap"
)

// FollowUpCanceller drops a user's pending reminders.
type FollowUpCanceller interface {
	CancelAll(ctx context.Context, userID string) error
}

type SettingsUseCase struct {
	settingsRepo repository.SettingsRepository
	followUps    FollowUpCanceller
	publisher    events.Publisher
	log          *zap.Logger
}

func NewSettingsUseCase(
	settingsRepo repository.SettingsRepository,
	followUps FollowUpCanceller,
	publisher events.Publisher,
	log *zap.Logger,
) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		followUps:    followUps,
		publisher:    publisher,
		log:          log.Named("settings"),
	}
}

// UpdateSettingsRequest is a partial update; nil fields are left as is.
type UpdateSettingsRequest struct {
	LocationSharing     *bool                `json:"location_sharing"`
	PushEnabled         *bool                `json:"push_enabled"`
	NotifyNewConnection *bool                `json:"notify_new_connection"`
	NotifyFollowUp      *bool                `json:"notify_follow_up"`
	FollowUpValue       *int                 `json:"follow_up_value" binding:"omitempty,min=1,max=1000"`
	FollowUpUnit        *domain.FollowUpUnit `json:"follow_up_unit" binding:"omitempty,follow_up_unit"`
}

// Get returns the user's settings, falling back to defaults.
func (uc *SettingsUseCase) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	st, err := uc.settingsRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return st, nil
}

// Update applies the request. Turning follow-ups off, directly or by
// disabling push, cancels every pending reminder of the user.
func (uc *SettingsUseCase) Update(ctx context.Context, userID string, req *UpdateSettingsRequest) (*domain.UserSettings, error) {
	current, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	hadFollowUps := current.WantsFollowUps()

	next := *current
	if req.LocationSharing != nil {
		next.LocationSharing = *req.LocationSharing
	}
	if req.PushEnabled != nil {
		next.PushEnabled = *req.PushEnabled
	}
	if req.NotifyNewConnection != nil {
		next.NotifyNewConnection = *req.NotifyNewConnection
	}
	if req.NotifyFollowUp != nil {
		next.NotifyFollowUp = *req.NotifyFollowUp
	}
	if req.FollowUpValue != nil {
		next.FollowUpValue = *req.FollowUpValue
	}
	if req.FollowUpUnit != nil {
		next.FollowUpUnit = *req.FollowUpUnit
	}

	if next.FollowUpValue <= 0 {
		return nil, fmt.Errorf("%w: follow-up value must be positive", domain.ErrInvalidFollowUp)
	}
	if !next.FollowUpUnit.IsValid() {
		return nil, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidFollowUp, next.FollowUpUnit)
	}

	if err := uc.settingsRepo.Upsert(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	if hadFollowUps && !next.WantsFollowUps() && uc.followUps != nil {
		if err := uc.followUps.CancelAll(ctx, userID); err != nil {
			uc.log.Error("failed to cancel pending follow-ups", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if uc.publisher != nil {
		uc.publisher.Publish(events.Event{
			Type:   events.SettingsUpdated,
			UserID: userID,
			Data:   &next,
			At:     time.Now().UTC(),
		})
	}
	return &next, nil
}
