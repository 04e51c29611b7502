package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/scheduler"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/notification"
	"go.uber.org/zap"
)

// Scheduler is the subset of the durable queue the follow-up flow needs.
type Scheduler interface {
	Schedule(ctx context.Context, key, tag, kind string, payload interface{}, delay time.Duration) error
	Cancel(ctx context.Context, key string) error
	CancelAll(ctx context.Context, tag string) error
}

// Notifier delivers a notification to a user's inbox.
type Notifier interface {
	Fire(ctx context.Context, req notification.FireRequest) (*domain.Notification, error)
}

// MessageWriter drafts reminder text. Optional.
type MessageWriter interface {
	GenerateFollowUpMessage(ctx context.Context, name, eventName, description string) (string, error)
}

type Service struct {
	scheduler      Scheduler
	settingsRepo   repository.SettingsRepository
	connectionRepo repository.ConnectionRepository
	notifier       Notifier
	writer         MessageWriter
	log            *zap.Logger
	now            func() time.Time
}

func NewService(
	sched Scheduler,
	settingsRepo repository.SettingsRepository,
	connectionRepo repository.ConnectionRepository,
	notifier Notifier,
	writer MessageWriter,
	log *zap.Logger,
) *Service {
	return &Service{
		scheduler:      sched,
		settingsRepo:   settingsRepo,
		connectionRepo: connectionRepo,
		notifier:       notifier,
		writer:         writer,
		log:            log.Named("followup"),
		now:            time.Now,
	}
}

// settingsFor returns stored settings or the defaults for users who never
// saved any.
func (s *Service) settingsFor(ctx context.Context, userID string) (*domain.UserSettings, error) {
	st, err := s.settingsRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ScheduleFor enqueues a reminder for the owner of conn according to the
// owner's settings. It reports whether a job was enqueued.
func (s *Service) ScheduleFor(ctx context.Context, conn *domain.Connection) (bool, error) {
	st, err := s.settingsFor(ctx, conn.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load settings: %w", err)
	}
	d, err := Decide(st, s.now())
	if err != nil {
		return false, err
	}
	if !d.Schedule {
		return false, nil
	}

	payload := Payload{ConnectionID: conn.ID, UserID: conn.UserID}
	if err := s.scheduler.Schedule(ctx, JobKey(conn.ID), UserTag(conn.UserID), JobKind, payload, d.Delay); err != nil {
		return false, fmt.Errorf("failed to schedule follow-up: %w", err)
	}
	s.log.Debug("follow-up scheduled",
		zap.String("connection_id", conn.ID),
		zap.Time("fire_at", d.FireAt),
	)
	return true, nil
}

func (s *Service) Cancel(ctx context.Context, connectionID string) error {
	return s.scheduler.Cancel(ctx, JobKey(connectionID))
}

// CancelAll drops every pending reminder owned by the user.
func (s *Service) CancelAll(ctx context.Context, userID string) error {
	return s.scheduler.CancelAll(ctx, UserTag(userID))
}

// Handle runs a due reminder. A connection deleted in the meantime ends
// the job without a notification.
func (s *Service) Handle(ctx context.Context, job *scheduler.Job) error {
	var p Payload
	if err := job.Decode(&p); err != nil {
		// Malformed payloads never succeed on retry.
		s.log.Error("dropping follow-up with bad payload", zap.String("key", job.Key), zap.Error(err))
		return nil
	}
	log := s.log.With(zap.String("connection_id", p.ConnectionID), zap.String("user_id", p.UserID))

	conn, err := s.connectionRepo.GetByID(ctx, p.ConnectionID)
	if errors.Is(err, domain.ErrConnectionNotFound) {
		log.Debug("connection gone, skipping follow-up")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load connection: %w", err)
	}

	st, err := s.settingsFor(ctx, conn.UserID)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !ShouldSchedule(st) {
		log.Debug("follow-ups disabled, skipping")
		return nil
	}

	_, err = s.notifier.Fire(ctx, notification.FireRequest{
		UserID:       conn.UserID,
		ConnectionID: conn.ID,
		Kind:         domain.NotificationFollowUp,
		Title:        Title(conn),
		Body:         s.body(ctx, conn),
		Actions:      []string{notification.ActionOpenConnection, notification.ActionDismiss},
	})
	if err != nil {
		return err
	}
	log.Info("follow-up delivered")
	return nil
}

func Title(conn *domain.Connection) string {
	return "Follow up with " + displayName(conn)
}

func displayName(conn *domain.Connection) string {
	if conn.ConnectedUserName != "" {
		return conn.ConnectedUserName
	}
	return "your new connection"
}

func (s *Service) body(ctx context.Context, conn *domain.Connection) string {
	if s.writer != nil {
		text, err := s.writer.GenerateFollowUpMessage(ctx, displayName(conn), conn.EventName, conn.ConnectedUserDescription)
		if err == nil && text != "" {
			return text
		}
	}
	return gemini.FallbackFollowUp(displayName(conn), conn.EventName)
}
