package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/observability"
)

const defaultAuditSize = 200

// AuditEntry is one recorded transition. Arguments and payloads are not kept
// since they may carry passwords or patient data.
type AuditEntry struct {
	ID        string            `json:"id,omitempty"`
	Type      events.EventType  `json:"type"`
	Action    events.ActionType `json:"action,omitempty"`
	Seq       uint64            `json:"seq,omitempty"`
	Error     string            `json:"error,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// AuditService logs lifecycle and session events and keeps the latest ones.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	size       int

	mu     sync.Mutex
	recent []AuditEntry
}

// NewAuditService creates the service. size <= 0 selects the default buffer.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, size int) *AuditService {
	if size <= 0 {
		size = defaultAuditSize
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger).Named("audit"),
		size:       size,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, phase := range events.LifecyclePhases {
		a.dispatcher.Subscribe(phase, a.handleLifecycle)
	}
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSessionEnded)
}

func (a *AuditService) handleLifecycle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("action", string(event.Action)),
		zap.String("phase", string(event.Type)),
		zap.Uint64("seq", event.Seq),
		zap.String("request_id", event.ID),
	}
	if event.Type == events.EventRejected {
		a.logger.Warn("action rejected", append(fields, zap.String("error", event.Error))...)
	} else {
		a.logger.Debug("action", fields...)
	}
	a.record(AuditEntry{
		ID:        event.ID,
		Type:      event.Type,
		Action:    event.Action,
		Seq:       event.Seq,
		Error:     event.Error,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (a *AuditService) handleSessionEnded(_ context.Context, event events.Event) error {
	var reason string
	if payload, ok := event.Payload.(events.SessionEndedPayload); ok {
		reason = payload.Reason
	}
	a.logger.Info("SessionEnded", zap.String("reason", reason))
	a.record(AuditEntry{Type: event.Type, Reason: reason, Timestamp: event.Timestamp})
	return nil
}

func (a *AuditService) record(entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, entry)
	if over := len(a.recent) - a.size; over > 0 {
		a.recent = append([]AuditEntry(nil), a.recent[over:]...)
	}
}

// Recent returns the buffered entries, oldest first.
func (a *AuditService) Recent() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.recent...)
}
