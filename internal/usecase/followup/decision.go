// Package followup decides whether and when a follow-up reminder fires for
// a new connection, and handles the reminder when it comes due.
package followup

import (
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

// daysPerMonth approximates a month; reminders are not calendar-aware.
const daysPerMonth = 30

const day = 24 * time.Hour

// ShouldSchedule reports whether a reminder should be scheduled. The
// follow-up flag is ignored while push notifications are disabled.
func ShouldSchedule(s *domain.UserSettings) bool {
	if s == nil {
		return false
	}
	return s.WantsFollowUps()
}

// Delay converts a (value, unit) pair into a duration.
func Delay(value int, unit domain.FollowUpUnit) (time.Duration, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", domain.ErrInvalidFollowUp, value)
	}
	v := time.Duration(value)
	switch unit {
	case domain.UnitMinutes:
		return v * time.Minute, nil
	case domain.UnitDays:
		return v * day, nil
	case domain.UnitMonths:
		return v * daysPerMonth * day, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidFollowUp, unit)
	}
}

// Decision is the outcome of Decide.
type Decision struct {
	Schedule bool
	Delay    time.Duration
	FireAt   time.Time
}

// Decide combines ShouldSchedule and Delay into an absolute fire time.
func Decide(s *domain.UserSettings, now time.Time) (Decision, error) {
	if !ShouldSchedule(s) {
		return Decision{}, nil
	}
	d, err := Delay(s.FollowUpValue, s.FollowUpUnit)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Schedule: true, Delay: d, FireAt: now.Add(d)}, nil
}

// JobKey is the scheduler key for a connection's reminder. One key per
// connection makes rescheduling replace rather than add.
func JobKey(connectionID string) string {
	return "followup:" + connectionID
}

// UserTag groups all of a user's reminders for bulk cancellation.
func UserTag(userID string) string {
	return "user:" + userID
}

const JobKind = "follow_up"

// Payload is stored with each scheduled reminder.
type Payload struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
}
