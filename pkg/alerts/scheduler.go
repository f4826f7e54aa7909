package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/courtflow/alertkit/pkg/logger"
)

// Scheduler polls the Dispatcher for scheduled alerts whose time has come and
// fans them out. One Scheduler per Dispatcher is enough; Start blocks until
// the context is cancelled.
type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithPollInterval sets how often the scheduler checks for due alerts.
// Default is 30 seconds.
func WithPollInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithSchedulerLogger sets the logger for the Scheduler.
func WithSchedulerLogger(log *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewScheduler creates a scheduler draining due alerts from the dispatcher.
func NewScheduler(d *Dispatcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		dispatcher: d,
		interval:   30 * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the polling loop until ctx is cancelled. An immediate first pass
// picks up alerts that came due while the process was down.
func (s *Scheduler) Start(ctx context.Context) error {
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	dispatched, err := s.dispatcher.DispatchDue(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "Scheduled alert poll failed",
			logger.Component("scheduler"),
			logger.Error(err),
		)
		return
	}
	if dispatched > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "Dispatched scheduled alerts",
			logger.Component("scheduler"),
			slog.Int("dispatched", dispatched),
		)
	}
}
