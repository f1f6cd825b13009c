// Package store holds the observable state containers. Each container wraps a
// pure reducer over a closed set of events; views only ever read snapshots.
package store

import (
	"sync"
	"time"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/events"
)

// Status of a container.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Policy configures freshness and stale-response handling.
type Policy struct {
	// FreshnessTTL bounds how long a loaded listing is served without refetch.
	// Zero means listings never go stale by age.
	FreshnessTTL time.Duration
	// DiscardStale drops terminal events older than the latest dispatch of the
	// same action instead of letting the last one to resolve win.
	DiscardStale bool
}

// settledStatus is the status after a successful terminal event.
func settledStatus(inFlight int) Status {
	if inFlight > 0 {
		return StatusLoading
	}
	return StatusIdle
}

func decrement(inFlight int) int {
	if inFlight > 0 {
		return inFlight - 1
	}
	return 0
}

// sequencer remembers the latest dispatched sequence number per action.
type sequencer struct {
	mu     sync.Mutex
	latest map[events.ActionType]uint64
}

func (s *sequencer) begin(meta action.Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = make(map[events.ActionType]uint64)
	}
	if meta.Seq > s.latest[meta.Action] {
		s.latest[meta.Action] = meta.Seq
	}
}

func (s *sequencer) stale(meta action.Meta) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return meta.Seq < s.latest[meta.Action]
}

// observers fans snapshots out to subscribers.
type observers[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

func (o *observers[S]) add(fn func(S)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(S))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers[S]) notify(snapshot S) {
	o.mu.Lock()
	fns := make([]func(S), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}
