package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/exchange"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/gdugdh24/tapcard-backend/internal/repository/memory"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingConnections struct {
	repository.ConnectionRepository
	creates int
}

func (c *countingConnections) Create(ctx context.Context, conn *domain.Connection) (string, error) {
	c.creates++
	return c.ConnectionRepository.Create(ctx, conn)
}

type fakeFollowUps struct {
	scheduled []string
	cancelled []string
	err       error
}

func (f *fakeFollowUps) ScheduleFor(ctx context.Context, conn *domain.Connection) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.scheduled = append(f.scheduled, conn.ID)
	return true, nil
}

func (f *fakeFollowUps) Cancel(ctx context.Context, connectionID string) error {
	f.cancelled = append(f.cancelled, connectionID)
	return nil
}

type recordingNotifier struct {
	fired []notification.FireRequest
}

func (r *recordingNotifier) Fire(ctx context.Context, req notification.FireRequest) (*domain.Notification, error) {
	r.fired = append(r.fired, req)
	return &domain.Notification{}, nil
}

type fixture struct {
	uc        *ConnectionUseCase
	store     *memory.Store
	conns     *countingConnections
	codec     *exchange.Codec
	followUps *fakeFollowUps
	notifier  *recordingNotifier
	broker    *events.Broker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		conns:     &countingConnections{ConnectionRepository: store.Connections()},
		codec:     exchange.NewCodec("", "", ""),
		followUps: &fakeFollowUps{},
		notifier:  &recordingNotifier{},
		broker:    events.NewBroker(),
	}
	f.uc = NewConnectionUseCase(f.conns, store.Profiles(), store.Settings(), f.codec,
		f.followUps, f.notifier, f.broker, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, store.Profiles().Create(ctx, &domain.Profile{ID: "alice", FullName: "Alice", Email: "alice@example.com"}))
	require.NoError(t, store.Profiles().Create(ctx, &domain.Profile{
		ID:       "bob",
		FullName: "Bob",
		Phone:    "+100",
		SocialLinks: domain.NormalizeLinks([]domain.SocialLink{
			{Platform: domain.PlatformGitHub, URL: "@bob", IsVisible: true},
		}),
	}))
	return f
}

func (f *fixture) payloadFor(t *testing.T, id string) string {
	t.Helper()
	p, err := f.store.Profiles().GetByID(context.Background(), id)
	require.NoError(t, err)
	uri, err := f.codec.EncodeURI(p)
	require.NoError(t, err)
	return uri
}

func TestConfirm_CreatesBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conn, err := f.uc.Confirm(ctx, "alice", &ConfirmRequest{
		Payload:   f.payloadFor(t, "bob"),
		Method:    domain.MethodQR,
		EventName: " GopherCon ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, "bob", conn.ConnectedUserID)
	assert.Equal(t, "Bob", conn.ConnectedUserName)
	assert.Equal(t, "+100", conn.ConnectedUserPhone)
	assert.Equal(t, "GopherCon", conn.EventName)
	require.Len(t, conn.ConnectedUserSocialLinks, 1)
	assert.Equal(t, "https://github.com/bob", conn.ConnectedUserSocialLinks[0].URL)

	reverse, err := f.store.Connections().GetByUsers(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", reverse.ConnectedUserName)
	assert.Greater(t, reverse.Timestamp, conn.Timestamp)

	assert.Equal(t, 2, f.conns.creates)
	assert.ElementsMatch(t, []string{conn.ID, reverse.ID}, f.followUps.scheduled)

	require.Len(t, f.notifier.fired, 1)
	assert.Equal(t, "bob", f.notifier.fired[0].UserID)
	assert.Equal(t, domain.NotificationNewConnection, f.notifier.fired[0].Kind)
}

func TestConfirm_DuplicateNeverCallsCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodNFC}

	_, err := f.uc.Confirm(ctx, "alice", req)
	require.NoError(t, err)
	creates := f.conns.creates

	_, err = f.uc.Confirm(ctx, "alice", req)
	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)
	assert.Equal(t, creates, f.conns.creates)
}

func TestConfirm_ReverseSkippedWhenCounterpartAlreadyConnected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Confirm(ctx, "bob", &ConfirmRequest{Payload: f.payloadFor(t, "alice"), Method: domain.MethodQR})
	require.NoError(t, err)
	require.Equal(t, 2, f.conns.creates)

	// alice already has bob from the reverse write
	_, err = f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)
	assert.Equal(t, 2, f.conns.creates)
}

func TestConfirm_UnknownCounterpartHasNoReverse(t *testing.T) {
	f := newFixture(t)
	stranger := &domain.Profile{ID: "carol", FullName: "Carol", CreatedAt: time.Now()}
	payload, err := f.codec.EncodeJSON(stranger)
	require.NoError(t, err)

	conn, err := f.uc.Confirm(context.Background(), "alice", &ConfirmRequest{Payload: string(payload), Method: domain.MethodNFC})
	require.NoError(t, err)
	assert.Equal(t, "Carol", conn.ConnectedUserName)
	assert.Equal(t, 1, f.conns.creates)
	assert.Empty(t, f.notifier.fired)
}

func TestConfirm_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Confirm(ctx, "bob", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	assert.ErrorIs(t, err, domain.ErrCannotConnectSelf)

	_, err = f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: "tapcard://connect?data=%%%", Method: domain.MethodQR})
	assert.ErrorIs(t, err, exchange.ErrDecode)

	_, err = f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: "BLUETOOTH"})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	_, err = f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR, Latitude: 91, Longitude: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	assert.Zero(t, f.conns.creates)
}

func TestConfirm_CoordinatesRequireLocationSharing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR, Latitude: 52.5, Longitude: 13.4}

	conn, err := f.uc.Confirm(ctx, "alice", req)
	require.NoError(t, err)
	assert.False(t, conn.HasLocation())

	st := domain.DefaultSettings("bob")
	st.LocationSharing = true
	require.NoError(t, f.store.Settings().Upsert(ctx, st))
	require.NoError(t, f.store.Profiles().Create(ctx, &domain.Profile{ID: "dave", FullName: "Dave"}))

	conn, err = f.uc.Confirm(ctx, "bob", &ConfirmRequest{Payload: f.payloadFor(t, "dave"), Method: domain.MethodQR, Latitude: 52.5, Longitude: 13.4})
	require.NoError(t, err)
	assert.True(t, conn.HasLocation())
}

func TestConfirm_FollowUpFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.followUps.err = errors.New("redis down")

	_, err := f.uc.Confirm(context.Background(), "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	require.NoError(t, err)
}

func TestConfirm_NoNewConnectionAlertWhenPushDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := domain.DefaultSettings("bob")
	st.PushEnabled = false
	require.NoError(t, f.store.Settings().Upsert(ctx, st))

	_, err := f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.fired)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payload := f.payloadFor(t, "bob")

	resp, err := f.uc.Preview(ctx, "alice", &PreviewRequest{Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "Bob", resp.Profile.FullName)
	assert.False(t, resp.AlreadyConnected)

	_, err = f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: payload, Method: domain.MethodQR})
	require.NoError(t, err)

	resp, err = f.uc.Preview(ctx, "alice", &PreviewRequest{Payload: payload})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyConnected)

	resp, err = f.uc.Preview(ctx, "bob", &PreviewRequest{Payload: payload})
	require.NoError(t, err)
	assert.True(t, resp.IsSelf)
}

func TestList_FiltersAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, c := range []*domain.Connection{
		{UserID: "alice", ConnectedUserID: "x", ConnectedUserName: "zed", ConnectionMethod: domain.MethodQR, Timestamp: 1, EventName: "GopherCon"},
		{UserID: "alice", ConnectedUserID: "y", ConnectedUserName: "Amy", ConnectionMethod: domain.MethodNFC, Timestamp: 3},
		{UserID: "alice", ConnectedUserID: "z", ConnectedUserName: "Mo", ConnectionMethod: domain.MethodQR, Timestamp: 2},
		{UserID: "bob", ConnectedUserID: "x", ConnectedUserName: "Other", ConnectionMethod: domain.MethodQR, Timestamp: 4},
	} {
		_, err := f.store.Connections().Create(ctx, c)
		require.NoError(t, err, i)
	}

	names := func(cs []*domain.Connection) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ConnectedUserName)
		}
		return out
	}

	all, err := f.uc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amy", "Mo", "zed"}, names(all))

	oldest, err := f.uc.List(ctx, "alice", ListFilter{Sort: "oldest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "Mo", "Amy"}, names(oldest))

	byName, err := f.uc.List(ctx, "alice", ListFilter{Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amy", "Mo", "zed"}, names(byName))

	qr, err := f.uc.List(ctx, "alice", ListFilter{Method: domain.MethodQR})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mo", "zed"}, names(qr))

	search, err := f.uc.List(ctx, "alice", ListFilter{Query: "gopher"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zed"}, names(search))
}

func TestOwnershipAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn, err := f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, "mallory", conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.UpdateNotes(ctx, "mallory", conn.ID, &UpdateNotesRequest{Notes: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(ctx, "mallory", conn.ID), domain.ErrForbidden)

	_, err = f.uc.Get(ctx, "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
	_, err = f.uc.UpdateEvent(ctx, "alice", "missing", &UpdateEventRequest{})
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestUpdateAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn, err := f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	require.NoError(t, err)

	_, err = f.uc.UpdateNotes(ctx, "alice", conn.ID, &UpdateNotesRequest{Notes: "met at lunch"})
	require.NoError(t, err)
	_, err = f.uc.UpdateEvent(ctx, "alice", conn.ID, &UpdateEventRequest{EventName: "Meetup", EventLocation: " Berlin "})
	require.NoError(t, err)

	bob, err := f.store.Profiles().GetByID(ctx, "bob")
	require.NoError(t, err)
	bob.FullName = "Robert"
	require.NoError(t, f.store.Profiles().Update(ctx, bob))

	got, err := f.uc.Get(ctx, "alice", conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.ConnectedUserName, "snapshot must not drift before refresh")

	refreshed, err := f.uc.RefreshSnapshot(ctx, "alice", conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert", refreshed.ConnectedUserName)

	got, err = f.uc.Get(ctx, "alice", conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert", got.ConnectedUserName)
	assert.Equal(t, "met at lunch", got.Notes)
	assert.Equal(t, "Meetup", got.EventName)
	assert.Equal(t, "Berlin", got.EventLocation)
}

func TestDelete_CancelsFollowUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn, err := f.uc.Confirm(ctx, "alice", &ConfirmRequest{Payload: f.payloadFor(t, "bob"), Method: domain.MethodQR})
	require.NoError(t, err)

	ch, cancel := f.broker.Subscribe("alice")
	defer cancel()

	require.NoError(t, f.uc.Delete(ctx, "alice", conn.ID))
	assert.Equal(t, []string{conn.ID}, f.followUps.cancelled)
	_, err = f.uc.Get(ctx, "alice", conn.ID)
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
	assert.Equal(t, events.ConnectionDeleted, (<-ch).Type)

	assert.ErrorIs(t, f.uc.Delete(ctx, "alice", conn.ID), domain.ErrConnectionNotFound)
}

func TestMillisClock_StrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newMillisClock(func() time.Time { return fixed })
	a, b, d := c.Next(), c.Next(), c.Next()
	assert.Equal(t, fixed.UnixMilli(), a)
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, d)
}
