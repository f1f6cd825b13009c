// Package action turns a gateway call into a pending/fulfilled/rejected
// lifecycle. It never retries and never touches container state itself.
package action

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/observability"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

// Meta identifies one invocation. Pending and terminal events share it.
type Meta struct {
	RequestID string
	Seq       uint64
	Action    events.ActionType
	Arg       any
}

// Thunk binds an action name and fallback message to a gateway call.
type Thunk[A, R any] struct {
	Type     events.ActionType
	Fallback string
	// Public marks calls made without a session, such as login. Their 401s
	// mean bad credentials, not an expired session.
	Public bool
	Call   func(ctx context.Context, arg A) (R, error)
}

// Handlers receive the lifecycle. Any of them may be nil.
type Handlers[R any] struct {
	Pending   func(Meta)
	Fulfilled func(Meta, R)
	Rejected  func(Meta, string)
}

// Runner carries what every invocation shares: the sequence counter, the
// trace bus and the auth failure hook.
type Runner struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	seq        atomic.Uint64

	mu            sync.RWMutex
	onAuthFailure func(context.Context)
}

// NewRunner builds a Runner. dispatcher and metrics may be nil.
func NewRunner(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger).Named("action"),
		metrics:    metrics,
	}
}

// OnAuthFailure registers the hook run after an unauthorized rejection of a
// non-public action.
func (r *Runner) OnAuthFailure(fn func(context.Context)) {
	r.mu.Lock()
	r.onAuthFailure = fn
	r.mu.Unlock()
}

// Run executes t.Call(ctx, arg) inside the lifecycle. Exactly one terminal
// handler runs after Pending. The raw error is returned alongside so callers
// can map it to a status code; containers only see the normalized string.
func Run[A, R any](ctx context.Context, r *Runner, t Thunk[A, R], arg A, h Handlers[R]) (R, error) {
	meta := Meta{
		RequestID: uuid.NewString(),
		Seq:       r.seq.Add(1),
		Action:    t.Type,
		Arg:       arg,
	}

	if h.Pending != nil {
		h.Pending(meta)
	}
	r.emit(ctx, meta, events.EventPending, nil, "")

	result, err := t.Call(ctx, arg)
	if err != nil {
		message := Normalize(err, t.Fallback)
		if h.Rejected != nil {
			h.Rejected(meta, message)
		}
		r.emit(ctx, meta, events.EventRejected, nil, message)

		if !t.Public && apperrors.IsUnauthorized(err) {
			r.authFailed(ctx, meta)
		}
		return result, err
	}

	if h.Fulfilled != nil {
		h.Fulfilled(meta, result)
	}
	r.emit(ctx, meta, events.EventFulfilled, result, "")
	return result, nil
}

// Normalize renders err as the single string a container stores: the server
// message, else fallback, with per-field validation messages appended as
// "message - field: msg, field: msg".
func Normalize(err error, fallback string) string {
	if err == nil {
		return ""
	}
	apiErr := apperrors.ToAPIError(err)

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = fallback
	}
	if len(apiErr.Details) == 0 {
		return message
	}

	fields := make([]string, 0, len(apiErr.Details))
	for field := range apiErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + apiErr.Details[field]
	}
	if message == "" {
		return strings.Join(parts, ", ")
	}
	return message + " - " + strings.Join(parts, ", ")
}

func (r *Runner) emit(ctx context.Context, meta Meta, phase events.EventType, payload any, message string) {
	r.metrics.RecordLifecycle(string(meta.Action), string(phase))
	if r.dispatcher == nil {
		return
	}
	err := r.dispatcher.Publish(ctx, events.Event{
		ID:        meta.RequestID,
		Type:      phase,
		Action:    meta.Action,
		Seq:       meta.Seq,
		Arg:       meta.Arg,
		Payload:   payload,
		Error:     message,
		Timestamp: time.Now(),
	})
	if err != nil {
		r.logger.Warn("lifecycle observer failed",
			zap.String("action", string(meta.Action)),
			zap.String("phase", string(phase)),
			zap.Error(err))
	}
}

func (r *Runner) authFailed(ctx context.Context, meta Meta) {
	r.mu.RLock()
	hook := r.onAuthFailure
	r.mu.RUnlock()
	if hook == nil {
		return
	}
	r.logger.Info("session rejected by backend", zap.String("action", string(meta.Action)))
	hook(ctx)
}
