package connection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/notification"
	"go.uber.org/zap"
)

// Decoder turns a scanned or tapped payload into the sender's profile.
type Decoder interface {
	Decode(payload string) (*domain.Profile, error)
}

// FollowUps schedules and cancels reminders for connections.
type FollowUps interface {
	ScheduleFor(ctx context.Context, conn *domain.Connection) (bool, error)
	Cancel(ctx context.Context, connectionID string) error
}

type Notifier interface {
	Fire(ctx context.Context, req notification.FireRequest) (*domain.Notification, error)
}

type ConnectionUseCase struct {
	connectionRepo repository.ConnectionRepository
	profileRepo    repository.ProfileRepository
	settingsRepo   repository.SettingsRepository
	decoder        Decoder
	followUps      FollowUps
	notifier       Notifier
	publisher      events.Publisher
	clock          *millisClock
	log            *zap.Logger
}

func NewConnectionUseCase(
	connectionRepo repository.ConnectionRepository,
	profileRepo repository.ProfileRepository,
	settingsRepo repository.SettingsRepository,
	decoder Decoder,
	followUps FollowUps,
	notifier Notifier,
	publisher events.Publisher,
	log *zap.Logger,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		connectionRepo: connectionRepo,
		profileRepo:    profileRepo,
		settingsRepo:   settingsRepo,
		decoder:        decoder,
		followUps:      followUps,
		notifier:       notifier,
		publisher:      publisher,
		clock:          newMillisClock(time.Now),
		log:            log.Named("connection"),
	}
}

// PreviewRequest carries a raw QR URI or NFC JSON payload.
type PreviewRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type PreviewResponse struct {
	Profile          *domain.Profile `json:"profile"`
	AlreadyConnected bool            `json:"already_connected"`
	IsSelf           bool            `json:"is_self"`
}

// ConfirmRequest records an exchange the user accepted.
type ConfirmRequest struct {
	Payload       string                  `json:"payload" binding:"required"`
	Method        domain.ConnectionMethod `json:"method" binding:"required,connection_method"`
	EventName     string                  `json:"event_name" binding:"omitempty,max=200"`
	EventLocation string                  `json:"event_location" binding:"omitempty,max=200"`
	Latitude      float64                 `json:"latitude" binding:"omitempty,latitude"`
	Longitude     float64                 `json:"longitude" binding:"omitempty,longitude"`
	Notes         string                  `json:"notes" binding:"omitempty,max=2000"`
}

// ListFilter narrows and orders List results.
type ListFilter struct {
	Method domain.ConnectionMethod `form:"method"`
	Query  string                  `form:"q"`
	Sort   string                  `form:"sort"` // newest (default), oldest, name
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

type UpdateEventRequest struct {
	EventName     string `json:"event_name" binding:"max=200"`
	EventLocation string `json:"event_location" binding:"max=200"`
}

// Preview decodes a payload without storing anything.
func (uc *ConnectionUseCase) Preview(ctx context.Context, userID string, req *PreviewRequest) (*PreviewResponse, error) {
	p, err := uc.decoder.Decode(req.Payload)
	if err != nil {
		return nil, err
	}
	resp := &PreviewResponse{Profile: p, IsSelf: p.ID == userID}
	if resp.IsSelf {
		return resp, nil
	}
	_, err = uc.connectionRepo.GetByUsers(ctx, userID, p.ID)
	switch {
	case err == nil:
		resp.AlreadyConnected = true
	case !errors.Is(err, domain.ErrConnectionNotFound):
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}
	return resp, nil
}

// Confirm stores the exchange for userID. A second connection to the same
// counterpart is rejected before anything is written.
func (uc *ConnectionUseCase) Confirm(ctx context.Context, userID string, req *ConfirmRequest) (*domain.Connection, error) {
	if !req.Method.IsValid() {
		return nil, domain.ErrInvalidMethod
	}
	if err := domain.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	counterpart, err := uc.decoder.Decode(req.Payload)
	if err != nil {
		return nil, err
	}
	if counterpart.ID == userID {
		return nil, domain.ErrCannotConnectSelf
	}

	_, err = uc.connectionRepo.GetByUsers(ctx, userID, counterpart.ID)
	if err == nil {
		return nil, domain.ErrDuplicateConnection
	}
	if !errors.Is(err, domain.ErrConnectionNotFound) {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}

	lat, lon := req.Latitude, req.Longitude
	if !uc.settingsFor(ctx, userID).LocationSharing {
		lat, lon = 0, 0
	}

	conn := &domain.Connection{
		UserID:           userID,
		ConnectedUserID:  counterpart.ID,
		Timestamp:        uc.clock.Next(),
		ConnectionMethod: req.Method,
		EventName:        strings.TrimSpace(req.EventName),
		EventLocation:    strings.TrimSpace(req.EventLocation),
		Latitude:         lat,
		Longitude:        lon,
		Notes:            req.Notes,
	}
	conn.ApplySnapshot(domain.SnapshotOf(counterpart))

	id, err := uc.connectionRepo.Create(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	conn.ID = id

	log := uc.log.With(zap.String("user_id", userID), zap.String("connection_id", id))
	log.Info("connection created", zap.String("method", string(req.Method)))

	uc.scheduleFollowUp(ctx, conn, log)
	uc.publish(events.ConnectionCreated, userID, conn)

	if reverse := uc.createReverse(ctx, conn, log); reverse != nil {
		uc.scheduleFollowUp(ctx, reverse, log)
		uc.notifyNewConnection(ctx, reverse, log)
		uc.publish(events.ConnectionCreated, reverse.UserID, reverse)
	}

	return conn, nil
}

// createReverse writes the counterpart's side of the exchange. Failures
// are logged; the caller's connection already exists.
func (uc *ConnectionUseCase) createReverse(ctx context.Context, conn *domain.Connection, log *zap.Logger) *domain.Connection {
	_, err := uc.connectionRepo.GetByUsers(ctx, conn.ConnectedUserID, conn.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrConnectionNotFound) {
		log.Warn("reverse connection check failed", zap.Error(err))
		return nil
	}
	if _, err := uc.profileRepo.GetByID(ctx, conn.ConnectedUserID); err != nil {
		// counterpart is not registered here
		log.Debug("skipping reverse connection", zap.Error(err))
		return nil
	}
	me, err := uc.profileRepo.GetByID(ctx, conn.UserID)
	if err != nil {
		log.Warn("reverse connection skipped, own profile unavailable", zap.Error(err))
		return nil
	}

	reverse := &domain.Connection{
		UserID:           conn.ConnectedUserID,
		ConnectedUserID:  conn.UserID,
		Timestamp:        uc.clock.Next(),
		ConnectionMethod: conn.ConnectionMethod,
		EventName:        conn.EventName,
		EventLocation:    conn.EventLocation,
		Latitude:         conn.Latitude,
		Longitude:        conn.Longitude,
	}
	reverse.ApplySnapshot(domain.SnapshotOf(me))

	id, err := uc.connectionRepo.Create(ctx, reverse)
	if err != nil {
		log.Warn("reverse connection failed", zap.Error(err))
		return nil
	}
	reverse.ID = id
	return reverse
}

func (uc *ConnectionUseCase) scheduleFollowUp(ctx context.Context, conn *domain.Connection, log *zap.Logger) {
	if uc.followUps == nil {
		return
	}
	if _, err := uc.followUps.ScheduleFor(ctx, conn); err != nil {
		log.Warn("follow-up not scheduled", zap.String("owner_id", conn.UserID), zap.Error(err))
	}
}

func (uc *ConnectionUseCase) notifyNewConnection(ctx context.Context, conn *domain.Connection, log *zap.Logger) {
	if uc.notifier == nil || !uc.settingsFor(ctx, conn.UserID).WantsNewConnectionAlerts() {
		return
	}
	_, err := uc.notifier.Fire(ctx, notification.FireRequest{
		UserID:       conn.UserID,
		ConnectionID: conn.ID,
		Kind:         domain.NotificationNewConnection,
		Title:        "New connection",
		Body:         fmt.Sprintf("%s exchanged contacts with you.", conn.ConnectedUserName),
		Actions:      []string{notification.ActionOpenConnection},
	})
	if err != nil {
		log.Warn("new-connection notification failed", zap.Error(err))
	}
}

func (uc *ConnectionUseCase) settingsFor(ctx context.Context, userID string) *domain.UserSettings {
	st, err := uc.settingsRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			uc.log.Warn("settings unavailable, using defaults", zap.String("user_id", userID), zap.Error(err))
		}
		return domain.DefaultSettings(userID)
	}
	return st
}

func (uc *ConnectionUseCase) publish(t events.Type, userID string, data interface{}) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Publish(events.Event{Type: t, UserID: userID, Data: data, At: time.Now().UTC()})
}

// Get returns one of the user's connections.
func (uc *ConnectionUseCase) Get(ctx context.Context, userID, id string) (*domain.Connection, error) {
	conn, err := uc.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return conn, nil
}

// List returns the user's connections filtered and ordered for display.
func (uc *ConnectionUseCase) List(ctx context.Context, userID string, f ListFilter) ([]*domain.Connection, error) {
	all, err := uc.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	out := make([]*domain.Connection, 0, len(all))
	for _, c := range all {
		if f.Method != "" && c.ConnectionMethod != f.Method {
			continue
		}
		if !c.Matches(f.Query) {
			continue
		}
		out = append(out, c)
	}

	switch f.Sort {
	case "oldest":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].ConnectedUserName) < strings.ToLower(out[j].ConnectedUserName)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	}
	return out, nil
}

func (uc *ConnectionUseCase) UpdateNotes(ctx context.Context, userID, id string, req *UpdateNotesRequest) (*domain.Connection, error) {
	conn, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.connectionRepo.UpdateNotes(ctx, id, req.Notes); err != nil {
		return nil, err
	}
	conn.Notes = req.Notes
	uc.publish(events.ConnectionUpdated, userID, conn)
	return conn, nil
}

func (uc *ConnectionUseCase) UpdateEvent(ctx context.Context, userID, id string, req *UpdateEventRequest) (*domain.Connection, error) {
	conn, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.EventName)
	location := strings.TrimSpace(req.EventLocation)
	if err := uc.connectionRepo.UpdateEvent(ctx, id, name, location); err != nil {
		return nil, err
	}
	conn.EventName = name
	conn.EventLocation = location
	uc.publish(events.ConnectionUpdated, userID, conn)
	return conn, nil
}

// RefreshSnapshot overwrites the stored counterpart fields with the
// counterpart's current profile.
func (uc *ConnectionUseCase) RefreshSnapshot(ctx context.Context, userID, id string) (*domain.Connection, error) {
	conn, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p, err := uc.profileRepo.GetByID(ctx, conn.ConnectedUserID)
	if err != nil {
		return nil, err
	}
	snap := domain.SnapshotOf(p)
	if err := uc.connectionRepo.UpdateProfileSnapshot(ctx, id, snap); err != nil {
		return nil, err
	}
	conn.ApplySnapshot(snap)
	uc.publish(events.ConnectionUpdated, userID, conn)
	return conn, nil
}

// Delete removes the connection and its pending reminder.
func (uc *ConnectionUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.connectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	if uc.followUps != nil {
		if err := uc.followUps.Cancel(ctx, id); err != nil {
			// the job handler skips deleted connections anyway
			uc.log.Warn("failed to cancel follow-up", zap.String("connection_id", id), zap.Error(err))
		}
	}
	uc.publish(events.ConnectionDeleted, userID, map[string]string{"id": id})
	return nil
}
