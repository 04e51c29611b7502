package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler runs one job. Returning an error schedules a retry.
type Handler interface {
	Handle(ctx context.Context, job *Job) error
}

type HandlerFunc func(ctx context.Context, job *Job) error

func (f HandlerFunc) Handle(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryDelay   time.Duration
	// LeaseTimeout bounds how long a claimed job may run before another
	// poll treats it as abandoned and queues it again.
	LeaseTimeout time.Duration
}

// Worker polls the scheduler and dispatches due jobs by kind.
type Worker struct {
	sched    *RedisScheduler
	handlers map[string]Handler
	cfg      WorkerConfig
	log      *zap.Logger
}

func NewWorker(sched *RedisScheduler, cfg WorkerConfig, log *zap.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}
	if cfg.LeaseTimeout <= 0 {
		cfg.LeaseTimeout = 5 * time.Minute
	}
	return &Worker{
		sched:    sched,
		handlers: make(map[string]Handler),
		cfg:      cfg,
		log:      log,
	}
}

// Register binds a handler to a job kind. Call before Run.
func (w *Worker) Register(kind string, h Handler) {
	w.handlers[kind] = h
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info("scheduler worker started", zap.Duration("poll_interval", w.cfg.PollInterval))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("scheduler worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.log.Error("scheduler poll failed", zap.Error(err))
			}
		}
	}
}

// ProcessDue runs every job whose fire time has passed and returns how
// many were claimed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	now := w.sched.now()
	if n, err := w.sched.requeueExpired(ctx, now); err != nil {
		w.log.Error("failed to requeue expired leases", zap.Error(err))
	} else if n > 0 {
		w.log.Warn("requeued abandoned jobs", zap.Int64("count", n))
	}

	keys, err := w.sched.dueKeys(ctx, now, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		job, err := w.sched.claim(ctx, key, w.cfg.LeaseTimeout)
		if err != nil {
			w.log.Error("failed to claim job", zap.String("key", key), zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		processed++
		w.run(ctx, job)
	}
	return processed, nil
}

func (w *Worker) run(ctx context.Context, job *Job) {
	log := w.log.With(zap.String("key", job.Key), zap.String("kind", job.Kind), zap.Int("attempt", job.Attempts+1))

	h, ok := w.handlers[job.Kind]
	if !ok {
		log.Error("no handler registered for job kind; dropping")
		w.complete(ctx, job, log)
		return
	}

	if err := h.Handle(ctx, job); err != nil {
		if job.Attempts+1 >= w.cfg.MaxAttempts {
			log.Error("job failed permanently", zap.Error(err))
			w.complete(ctx, job, log)
			return
		}
		log.Warn("job failed; retrying", zap.Error(err), zap.Duration("retry_in", w.cfg.RetryDelay))
		requeued, err := w.sched.retry(ctx, job, w.cfg.RetryDelay)
		if err != nil {
			log.Error("failed to reschedule job", zap.Error(err))
		} else if !requeued {
			log.Info("job cancelled or rescheduled while running; not retrying")
		}
		return
	}

	log.Debug("job completed")
	w.complete(ctx, job, log)
}

func (w *Worker) complete(ctx context.Context, job *Job, log *zap.Logger) {
	if err := w.sched.complete(ctx, job); err != nil {
		log.Error("failed to mark job complete", zap.Error(err))
	}
}
