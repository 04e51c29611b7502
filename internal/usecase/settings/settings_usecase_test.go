package settings

import (
	"context"
	"testing"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cancelRecorder struct {
	users []string
}

func (c *cancelRecorder) CancelAll(ctx context.Context, userID string) error {
	c.users = append(c.users, userID)
	return nil
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func newUseCase() (*SettingsUseCase, *cancelRecorder, *events.Broker) {
	rec := &cancelRecorder{}
	broker := events.NewBroker()
	uc := NewSettingsUseCase(memory.NewStore().Settings(), rec, broker, zap.NewNop())
	return uc, rec, broker
}

func TestGet_Defaults(t *testing.T) {
	uc, _, _ := newUseCase()
	st, err := uc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings("u1"), st)
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	uc, rec, _ := newUseCase()
	unit := domain.UnitMonths

	st, err := uc.Update(context.Background(), "u1", &UpdateSettingsRequest{
		FollowUpValue: intPtr(2),
		FollowUpUnit:  &unit,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.FollowUpValue)
	assert.Equal(t, domain.UnitMonths, st.FollowUpUnit)
	assert.True(t, st.PushEnabled)
	assert.Empty(t, rec.users)

	again, err := uc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.UnitMonths, again.FollowUpUnit)
}

func TestUpdate_DisablingPushCancelsFollowUps(t *testing.T) {
	uc, rec, broker := newUseCase()
	ch, cancel := broker.Subscribe("u1")
	defer cancel()

	_, err := uc.Update(context.Background(), "u1", &UpdateSettingsRequest{PushEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, rec.users)

	ev := <-ch
	assert.Equal(t, events.SettingsUpdated, ev.Type)
}

func TestUpdate_AlreadyDisabledDoesNotCancelAgain(t *testing.T) {
	uc, rec, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.Update(ctx, "u1", &UpdateSettingsRequest{NotifyFollowUp: boolPtr(false)})
	require.NoError(t, err)
	_, err = uc.Update(ctx, "u1", &UpdateSettingsRequest{PushEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, rec.users)
}

func TestUpdate_RejectsInvalidFollowUp(t *testing.T) {
	uc, _, _ := newUseCase()
	bad := domain.FollowUpUnit("weeks")

	_, err := uc.Update(context.Background(), "u1", &UpdateSettingsRequest{FollowUpUnit: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidFollowUp)

	_, err = uc.Update(context.Background(), "u1", &UpdateSettingsRequest{FollowUpValue: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidFollowUp)

	st, err := uc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.FollowUpValue)
}
