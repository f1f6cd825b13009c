package store

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/observability"
)

// CollectionState is the reduced state of a resource collection.
type CollectionState[T domain.Entity] struct {
	Items         []T       `json:"items"`
	Current       *T        `json:"current"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
	Status        Status    `json:"status"`
	Error         string    `json:"error,omitempty"`
	InFlight      int       `json:"inFlight"`
	FetchedAt     time.Time `json:"fetchedAt,omitempty"`
	Invalidated   bool      `json:"invalidated,omitempty"`
}

// NewCollectionState is the idle, empty state.
func NewCollectionState[T domain.Entity]() CollectionState[T] {
	return CollectionState[T]{Items: []T{}, Status: StatusIdle}
}

// Event is the closed set of collection events.
type Event interface {
	collectionEvent()
}

// Pending starts a request.
type Pending struct{}

// Rejected ends a request with a normalized message.
type Rejected struct{ Message string }

// PageLoaded replaces the listing.
type PageLoaded[T domain.Entity] struct {
	Page domain.Page[T]
	At   time.Time
}

// ItemLoaded selects one entity as current.
type ItemLoaded[T domain.Entity] struct{ Item T }

// ItemCreated appends an entity.
type ItemCreated[T domain.Entity] struct{ Item T }

// ItemUpdated replaces an entity by id and selects it.
type ItemUpdated[T domain.Entity] struct{ Item T }

// ItemDeleted removes an entity by id.
type ItemDeleted struct{ ID int64 }

// Settled ends a request that has no effect on the data.
type Settled struct{}

// Discarded ends a request whose response arrived after a newer dispatch.
type Discarded struct{}

// ErrorCleared dismisses the error banner.
type ErrorCleared struct{}

// CurrentCleared deselects the current entity.
type CurrentCleared struct{}

// Invalidated marks the listing for refetch.
type Invalidated struct{}

func (Pending) collectionEvent()        {}
func (Rejected) collectionEvent()       {}
func (PageLoaded[T]) collectionEvent()  {}
func (ItemLoaded[T]) collectionEvent()  {}
func (ItemCreated[T]) collectionEvent() {}
func (ItemUpdated[T]) collectionEvent() {}
func (ItemDeleted) collectionEvent()    {}
func (Settled) collectionEvent()        {}
func (Discarded) collectionEvent()      {}
func (ErrorCleared) collectionEvent()   {}
func (CurrentCleared) collectionEvent() {}
func (Invalidated) collectionEvent()    {}

// ReduceCollection is the collection reducer. It never mutates s.
func ReduceCollection[T domain.Entity](s CollectionState[T], e Event) CollectionState[T] {
	switch ev := e.(type) {
	case Pending:
		s.Status = StatusLoading
		s.Error = ""
		s.InFlight++
	case Rejected:
		s.InFlight = decrement(s.InFlight)
		s.Status = StatusError
		s.Error = ev.Message
	case PageLoaded[T]:
		s = succeed(s)
		s.Items = append([]T{}, ev.Page.Content...)
		s.TotalPages = ev.Page.TotalPages
		s.TotalElements = ev.Page.TotalElements
		s.FetchedAt = ev.At
		s.Invalidated = false
	case ItemLoaded[T]:
		s = succeed(s)
		item := ev.Item
		s.Current = &item
	case ItemCreated[T]:
		s = succeed(s)
		items := make([]T, len(s.Items), len(s.Items)+1)
		copy(items, s.Items)
		s.Items = append(items, ev.Item)
	case ItemUpdated[T]:
		s = succeed(s)
		items := append([]T{}, s.Items...)
		for i := range items {
			if items[i].EntityID() == ev.Item.EntityID() {
				items[i] = ev.Item
				break
			}
		}
		s.Items = items
		item := ev.Item
		s.Current = &item
	case ItemDeleted:
		s = succeed(s)
		items := make([]T, 0, len(s.Items))
		for _, it := range s.Items {
			if it.EntityID() != ev.ID {
				items = append(items, it)
			}
		}
		s.Items = items
	case Settled:
		s = succeed(s)
	case Discarded:
		s.InFlight = decrement(s.InFlight)
		if s.Status == StatusLoading {
			s.Status = settledStatus(s.InFlight)
		}
	case ErrorCleared:
		s.Error = ""
		if s.Status == StatusError {
			s.Status = settledStatus(s.InFlight)
		}
	case CurrentCleared:
		s.Current = nil
	case Invalidated:
		s.Invalidated = true
	default:
		panic(fmt.Sprintf("store: unhandled collection event %T", e))
	}
	return s
}

func succeed[T domain.Entity](s CollectionState[T]) CollectionState[T] {
	s.InFlight = decrement(s.InFlight)
	s.Status = settledStatus(s.InFlight)
	s.Error = ""
	return s
}

// NeedsFetch reports whether the listing should be (re)loaded at now.
func (s CollectionState[T]) NeedsFetch(now time.Time, ttl time.Duration) bool {
	if s.FetchedAt.IsZero() || s.Invalidated {
		return true
	}
	return ttl > 0 && now.Sub(s.FetchedAt) > ttl
}

// Collection is the observable container for one resource.
type Collection[T domain.Entity] struct {
	name   string
	policy Policy
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state CollectionState[T]

	seq  sequencer
	subs observers[CollectionState[T]]
}

// NewCollection builds an empty container named name.
func NewCollection[T domain.Entity](name string, policy Policy, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{
		name:   name,
		policy: policy,
		logger: observability.OrNop(logger).Named("store." + name),
		now:    time.Now,
		state:  NewCollectionState[T](),
	}
}

// Name of the container.
func (c *Collection[T]) Name() string { return c.name }

// Dispatch reduces e and notifies subscribers.
func (c *Collection[T]) Dispatch(e Event) {
	c.mu.Lock()
	c.state = ReduceCollection(c.state, e)
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.subs.notify(snapshot)
}

// Snapshot returns a copy safe to hand to views.
func (c *Collection[T]) Snapshot() CollectionState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn for every new snapshot and returns its cancel func.
func (c *Collection[T]) Subscribe(fn func(CollectionState[T])) func() {
	return c.subs.add(fn)
}

// NeedsFetch applies the container's freshness policy.
func (c *Collection[T]) NeedsFetch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.NeedsFetch(c.now(), c.policy.FreshnessTTL)
}

// ClearError, ClearCurrent and Invalidate are the synchronous actions.
func (c *Collection[T]) ClearError()   { c.Dispatch(ErrorCleared{}) }
func (c *Collection[T]) ClearCurrent() { c.Dispatch(CurrentCleared{}) }
func (c *Collection[T]) Invalidate()   { c.Dispatch(Invalidated{}) }

// Begin records the dispatch and reduces Pending.
func (c *Collection[T]) Begin(meta action.Meta) {
	c.seq.begin(meta)
	c.Dispatch(Pending{})
}

// Settle reduces a terminal event, or Discarded when the stale policy drops it.
func (c *Collection[T]) Settle(meta action.Meta, e Event) {
	if c.policy.DiscardStale && c.seq.stale(meta) {
		c.logger.Debug("discarding stale response",
			zap.String("action", string(meta.Action)),
			zap.Uint64("seq", meta.Seq))
		e = Discarded{}
	}
	c.Dispatch(e)
}

// Loaded builds a PageLoaded stamped with the container clock.
func (c *Collection[T]) Loaded(page domain.Page[T]) Event {
	return PageLoaded[T]{Page: page, At: c.now()}
}

func (s CollectionState[T]) clone() CollectionState[T] {
	s.Items = append([]T{}, s.Items...)
	if s.Current != nil {
		current := *s.Current
		s.Current = &current
	}
	return s
}

// Handle wires an action's lifecycle into c; fulfilled results are mapped to
// a collection event by onFulfilled.
func Handle[T domain.Entity, R any](c *Collection[T], onFulfilled func(R) Event) action.Handlers[R] {
	return action.Handlers[R]{
		Pending: c.Begin,
		Fulfilled: func(meta action.Meta, result R) {
			c.Settle(meta, onFulfilled(result))
		},
		Rejected: func(meta action.Meta, message string) {
			c.Settle(meta, Rejected{Message: message})
		},
	}
}
