package queue

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// ReadyFunc receives a notification popped from the head of the queue.
type ReadyFunc func(ctx context.Context, n notifications.Notification)

// Queue is a bounded FIFO of notifications waiting for a policy window to open.
type Queue struct {
	mu           sync.Mutex
	items        []notifications.Notification
	handler      ReadyFunc
	lastDispatch time.Time

	capacity   int
	interval   time.Duration
	minSpacing time.Duration
	gate       func(time.Time) bool
	now        func() time.Time
	logger     *slog.Logger
	onExpired  ReadyFunc

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		capacity: 100,
		interval: 500 * time.Millisecond,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make([]notifications.Notification, 0, q.capacity)
	return q
}

// OnReady registers the single handler drained notifications are handed to.
func (q *Queue) OnReady(fn ReadyFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = fn
}

// Enqueue appends n to the tail. On a full queue n is dropped and
// ErrQueueFull is returned. A notification already queued under the same id
// is replaced in place.
func (q *Queue) Enqueue(n notifications.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(n.ID); i >= 0 {
		q.items[i] = n
		return nil
	}
	if len(q.items) >= q.capacity {
		return fmt.Errorf("%w: notification %s dropped at capacity %d", ErrQueueFull, n.ID, q.capacity)
	}
	q.items = append(q.items, n)
	return nil
}

// Remove deletes the queued notification with the given id and reports
// whether it was present.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// Clear empties the queue and returns the removed ids in FIFO order.
func (q *Queue) Clear() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, len(q.items))
	for i, n := range q.items {
		ids[i] = n.ID
	}
	clear(q.items)
	q.items = q.items[:0]
	return ids
}

// Len returns the current number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the configured capacity.
func (q *Queue) Cap() int {
	return q.capacity
}

// Contains reports whether a notification with id is queued.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(id) >= 0
}

// Snapshot returns a copy of the queued notifications in FIFO order.
func (q *Queue) Snapshot() []notifications.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

func (q *Queue) indexOf(id string) int {
	return slices.IndexFunc(q.items, func(n notifications.Notification) bool {
		return n.ID == id
	})
}

// Start launches the drain loop in the background.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	hasHandler := q.handler != nil
	q.mu.Unlock()
	if !hasHandler {
		return ErrNoHandler
	}

	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})
	go q.run(ctx, q.done)

	q.logger.Info("deferred queue started",
		slog.Duration("drain_interval", q.interval),
		slog.Int("capacity", q.capacity),
	)
	return nil
}

// Stop halts the drain loop and waits for an in-progress drain step.
// Safe to call more than once.
func (q *Queue) Stop() {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.cancel == nil {
		return
	}

	q.cancel()
	<-q.done
	q.cancel = nil
	q.done = nil

	q.logger.Info("deferred queue stopped", slog.Int("remaining", q.Len()))
}

// Run starts the queue and blocks until ctx is done; suitable for errgroup.
func (q *Queue) Run(ctx context.Context) func() error {
	return func() error {
		if err := q.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		q.Stop()
		return nil
	}
}

func (q *Queue) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.drain(ctx)
		}
	}
}

// drain pops at most one notification from the head. It never waits: a
// closed gate or an unmet spacing simply skips the tick.
func (q *Queue) drain(ctx context.Context) {
	now := q.now()
	if q.gate != nil && !q.gate(now) {
		return
	}

	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	if q.minSpacing > 0 && !q.lastDispatch.IsZero() && now.Sub(q.lastDispatch) < q.minSpacing {
		q.mu.Unlock()
		return
	}

	n := q.items[0]
	q.items[0] = notifications.Notification{}
	q.items = q.items[1:]

	expired := n.IsExpired(now)
	if !expired {
		q.lastDispatch = now
	}
	handler := q.handler
	q.mu.Unlock()

	if expired {
		q.logger.DebugContext(ctx, "deferred notification expired", logger.NotificationID(n.ID))
		if q.onExpired != nil {
			q.safeCall(ctx, q.onExpired, n)
		}
		return
	}

	q.safeCall(ctx, handler, n)
}

func (q *Queue) safeCall(ctx context.Context, fn ReadyFunc, n notifications.Notification) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.ErrorContext(ctx, "queue handler panicked",
				logger.NotificationID(n.ID),
				slog.Any("panic", r),
			)
		}
	}()
	fn(ctx, n)
}
