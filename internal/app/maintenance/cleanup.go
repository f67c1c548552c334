package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/pkg/logger"
)

const (
	defaultSessionSpec   = "@hourly"
	defaultSessionMaxAge = 7 * 24 * time.Hour
)

// Cleaner coordinates background maintenance tasks, currently limited to
// purging stale address validation sessions.
type Cleaner struct {
	sessions *services.ValidationSessionService
	cron     *cron.Cron
	log      *zap.Logger
	maxAge   time.Duration

	sessionSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSessionMaxAge adjusts how long validation sessions are retained before cleanup.
func WithSessionMaxAge(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.maxAge = age
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil session service
// results in the cleanup job being skipped.
func NewCleaner(sessions *services.ValidationSessionService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		maxAge:          defaultSessionMaxAge,
		sessionSchedule: defaultSessionSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
		ctx := context.Background()
		if removed, err := c.sessions.PurgeStale(ctx, c.maxAge); err != nil {
			c.log.Warn("session cleanup failed", zap.Error(err))
		} else if removed > 0 {
			c.log.Info("purged stale validation sessions", zap.Int64("removed", removed))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.PurgeStale(ctx, c.maxAge); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
