package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/observability"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// SessionSource exposes the session and the refresh flow.
type SessionSource interface {
	Snapshot() store.AuthState
	Refresh(ctx context.Context) (domain.AuthResponse, error)
}

// Sweeper ends sessions whose token has expired.
type Sweeper interface {
	Sweep() bool
}

// SessionWorker periodically refreshes tokens close to expiry and sweeps
// expired sessions.
type SessionWorker struct {
	session  SessionSource
	gate     Sweeper
	interval time.Duration
	leeway   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionWorker builds the worker. A non-positive interval defaults to 30s.
func NewSessionWorker(session SessionSource, gate Sweeper, interval, leeway time.Duration, logger *zap.Logger) *SessionWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SessionWorker{
		session:  session,
		gate:     gate,
		interval: interval,
		leeway:   leeway,
		logger:   observability.OrNop(logger).Named("session_worker"),
		now:      time.Now,
	}
}

// Run checks once immediately and then on every tick until ctx is done.
func (w *SessionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check runs one refresh-then-sweep pass.
func (w *SessionWorker) Check(ctx context.Context) {
	s := w.session.Snapshot()
	if s.Token == "" {
		return
	}
	if w.leeway > 0 && s.RefreshToken != "" && auth.ExpiresWithin(s.Token, w.now(), w.leeway) {
		if _, err := w.session.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("token refresh failed", zap.Error(err))
		} else if err == nil {
			w.logger.Debug("access token refreshed")
		}
	}
	if w.gate.Sweep() {
		w.logger.Info("expired session swept")
	}
}
