package lifecycle

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Step is one recorded transition.
type Step struct {
	From  State     `json:"from"`
	Event Event     `json:"event"`
	To    State     `json:"to"`
	At    time.Time `json:"at"`
}

// Status is the externally visible lifecycle of a notification.
type Status struct {
	ID        string                     `json:"id"`
	Channel   notifications.DeliveryType `json:"channel,omitempty"`
	State     State                      `json:"state"`
	Reason    DropReason                 `json:"reason,omitempty"`
	UpdatedAt time.Time                  `json:"updated_at"`
	History   []Step                     `json:"history"`
}

type record struct {
	id      string
	channel notifications.DeliveryType
	state   State
	reason  DropReason
	updated time.Time
	history []Step
}

func (r *record) status() Status {
	return Status{
		ID:        r.id,
		Channel:   r.channel,
		State:     r.state,
		Reason:    r.reason,
		UpdatedAt: r.updated,
		History:   slices.Clone(r.history),
	}
}

// Tracker keeps the lifecycle state of recently seen notifications.
type Tracker struct {
	mu     sync.Mutex
	graph  graph
	store  *retention
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for step timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the logger used for evictions and rejected transitions.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker creates a tracker retaining at most capacity records.
// Panics if capacity is not positive.
func NewTracker(capacity int, opts ...Option) *Tracker {
	if capacity <= 0 {
		panic("lifecycle: tracker capacity must be positive")
	}
	t := &Tracker{
		graph:  newGraph(Transitions),
		store:  newRetention(capacity),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fire applies ev to the notification id. Unknown ids start in StateCreated.
// reason is recorded only when the event is EventDrop.
func (t *Tracker) Fire(id string, ev Event, reason DropReason) (Status, error) {
	return t.fire(id, "", ev, reason)
}

// Track applies ev to n and remembers the channel n is routed to.
func (t *Tracker) Track(n notifications.Notification, ev Event) (Status, error) {
	return t.fire(n.ID, n.DeliveryType, ev, "")
}

func (t *Tracker) fire(id string, channel notifications.DeliveryType, ev Event, reason DropReason) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apply(id, channel, ev, reason, nil)
}

// Admit applies ev to n only if the transition is valid and fn succeeds.
// fn runs under the tracker lock, so a concurrent submission of the same id
// observes either the old state or the admitted one, never both passing.
// A failing fn leaves the record untouched and its error is returned as is.
func (t *Tracker) Admit(n notifications.Notification, ev Event, fn func() error) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apply(n.ID, n.DeliveryType, ev, "", fn)
}

func (t *Tracker) apply(id string, channel notifications.DeliveryType, ev Event, reason DropReason, fn func() error) (Status, error) {
	rec, ok := t.store.get(id)
	if !ok {
		rec = &record{id: id, state: StateCreated}
	}
	if channel == "" {
		channel = rec.channel
	}

	to, ok := t.graph.next(rec.state, ev)
	if !ok {
		return rec.status(), &NoTransitionError{ID: id, State: rec.state, Event: ev}
	}
	if fn != nil {
		if err := fn(); err != nil {
			return rec.status(), err
		}
	}

	now := t.now()
	next := &record{
		id:      id,
		channel: channel,
		state:   to,
		updated: now,
		history: append(slices.Clone(rec.history), Step{From: rec.state, Event: ev, To: to, At: now}),
	}
	if ev == EventDrop {
		next.reason = reason
	}

	for _, evicted := range t.store.touch(next) {
		t.logger.Debug("lifecycle record evicted", logger.NotificationID(evicted))
	}
	return next.status(), nil
}

// CanFire reports whether ev is a valid next event for id.
func (t *Tracker) CanFire(id string, ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := StateCreated
	if rec, ok := t.store.get(id); ok {
		state = rec.state
	}
	_, ok := t.graph.next(state, ev)
	return ok
}

// Status returns the current lifecycle of id.
func (t *Tracker) Status(id string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.store.get(id)
	if !ok {
		return Status{}, ErrUnknownNotification
	}
	return rec.status(), nil
}

// Known reports whether the tracker holds a record for id.
func (t *Tracker) Known(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.store.get(id)
	return ok
}

// Forget drops the record for id.
func (t *Tracker) Forget(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.remove(id)
}

// Len returns the number of retained records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.len()
}
