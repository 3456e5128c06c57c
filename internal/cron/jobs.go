package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/efarmaplus/storefront/pkg/logger"
)

type sessionSweeper interface {
	Sweep(idle time.Duration) int
}

// NewSessionSweepJob tears down admin UI sessions idle for longer than idle,
// releasing their modal locks and key listeners.
func NewSessionSweepJob(sessions sessionSweeper, idle time.Duration, logg *logger.Logger) (Job, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if idle <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &sessionSweepJob{sessions: sessions, idle: idle, logg: logg}, nil
}

type sessionSweepJob struct {
	sessions sessionSweeper
	idle     time.Duration
	logg     *logger.Logger
}

func (j *sessionSweepJob) Name() string { return "admin-session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	if n := j.sessions.Sweep(j.idle); n > 0 {
		j.logg.Info(j.logg.WithField(ctx, "sessions", n), "idle admin sessions swept")
	}
	return nil
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// NewCartExpiryJob deletes persisted carts past their TTL. Only the database
// store needs it; redis expires keys itself.
func NewCartExpiryJob(store expiredPurger, logg *logger.Logger) (Job, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &cartExpiryJob{store: store, logg: logg}, nil
}

type cartExpiryJob struct {
	store expiredPurger
	logg  *logger.Logger
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired carts: %w", err)
	}
	if n > 0 {
		j.logg.Info(j.logg.WithField(ctx, "carts", n), "expired carts purged")
	}
	return nil
}
