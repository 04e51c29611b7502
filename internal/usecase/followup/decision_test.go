package followup

import (
	"testing"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSchedule(t *testing.T) {
	tests := []struct {
		name     string
		push     bool
		followUp bool
		want     bool
	}{
		{name: "push off, follow-up on", push: false, followUp: true, want: false},
		{name: "push off, follow-up off", push: false, followUp: false, want: false},
		{name: "push on, follow-up off", push: true, followUp: false, want: false},
		{name: "push on, follow-up on", push: true, followUp: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings("u1")
			s.PushEnabled = tt.push
			s.NotifyFollowUp = tt.followUp
			assert.Equal(t, tt.want, ShouldSchedule(s))
		})
	}
	assert.False(t, ShouldSchedule(nil))
}

func TestDelay(t *testing.T) {
	tests := []struct {
		value int
		unit  domain.FollowUpUnit
		want  time.Duration
	}{
		{value: 15, unit: domain.UnitMinutes, want: 15 * time.Minute},
		{value: 3, unit: domain.UnitDays, want: 72 * time.Hour},
		{value: 2, unit: domain.UnitMonths, want: 60 * 24 * time.Hour},
		{value: 1, unit: domain.UnitMonths, want: 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := Delay(tt.value, tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d %s", tt.value, tt.unit)
	}
}

func TestDelay_Invalid(t *testing.T) {
	_, err := Delay(0, domain.UnitDays)
	assert.ErrorIs(t, err, domain.ErrInvalidFollowUp)

	_, err = Delay(-1, domain.UnitMinutes)
	assert.ErrorIs(t, err, domain.ErrInvalidFollowUp)

	_, err = Delay(1, "weeks")
	assert.ErrorIs(t, err, domain.ErrInvalidFollowUp)
}

func TestDecide(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	s := domain.DefaultSettings("u1")
	s.FollowUpValue = 2
	s.FollowUpUnit = domain.UnitMonths

	d, err := Decide(s, now)
	require.NoError(t, err)
	assert.True(t, d.Schedule)
	assert.Equal(t, 60*24*time.Hour, d.Delay)
	assert.Equal(t, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), d.FireAt)

	s.PushEnabled = false
	d, err = Decide(s, now)
	require.NoError(t, err)
	assert.False(t, d.Schedule)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "followup:c1", JobKey("c1"))
	assert.Equal(t, "user:u1", UserTag("u1"))
}
