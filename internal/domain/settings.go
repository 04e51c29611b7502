package domain

import "time"

type FollowUpUnit string

const (
	UnitMinutes FollowUpUnit = "minutes"
	UnitDays    FollowUpUnit = "days"
	UnitMonths  FollowUpUnit = "months"
)

func (u FollowUpUnit) IsValid() bool {
	switch u {
	case UnitMinutes, UnitDays, UnitMonths:
		return true
	}
	return false
}

// UserSettings holds per-user preferences. The per-category notification
// flags only take effect while PushEnabled is set.
type UserSettings struct {
	UserID              string       `json:"user_id" db:"user_id"`
	LocationSharing     bool         `json:"location_sharing" db:"location_sharing"`
	PushEnabled         bool         `json:"push_enabled" db:"push_enabled"`
	NotifyNewConnection bool         `json:"notify_new_connection" db:"notify_new_connection"`
	NotifyFollowUp      bool         `json:"notify_follow_up" db:"notify_follow_up"`
	FollowUpValue       int          `json:"follow_up_value" db:"follow_up_value"`
	FollowUpUnit        FollowUpUnit `json:"follow_up_unit" db:"follow_up_unit"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		LocationSharing:     false,
		PushEnabled:         true,
		NotifyNewConnection: true,
		NotifyFollowUp:      true,
		FollowUpValue:       3,
		FollowUpUnit:        UnitDays,
	}
}

func (s *UserSettings) WantsNewConnectionAlerts() bool {
	return s.PushEnabled && s.NotifyNewConnection
}

func (s *UserSettings) WantsFollowUps() bool {
	return s.PushEnabled && s.NotifyFollowUp
}
