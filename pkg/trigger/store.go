package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// ReadyFunc receives a notification whose scheduled time has come.
type ReadyFunc func(ctx context.Context, n notifications.Notification)

// Store holds notifications scheduled for a future time and hands each one to
// the registered ReadyFunc once, on the first scan at or after its time.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	handler ReadyFunc

	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	onExpired ReadyFunc

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type entry struct {
	notification notifications.Notification
	at           time.Time
	triggered    bool
}

// New creates an empty trigger store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]*entry),
		interval: time.Second,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnReady registers the single handler due notifications are emitted to.
// A later call replaces the earlier handler.
func (s *Store) OnReady(fn ReadyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Schedule stores n to fire at the given time. Scheduling an id that is
// already pending replaces the earlier entry.
func (s *Store) Schedule(n notifications.Notification, at time.Time) error {
	now := s.now()
	if at.Before(now) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidSchedule, at.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	s.mu.Lock()
	s.entries[n.ID] = &entry{notification: n, at: at}
	s.mu.Unlock()

	s.logger.Debug("notification scheduled",
		logger.NotificationID(n.ID),
		slog.Time("scheduled_for", at),
	)
	return nil
}

// Cancel removes a pending entry and reports whether one existed.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// CancelAll removes every pending entry and returns the removed ids.
func (s *Store) CancelAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	clear(s.entries)
	return ids
}

// Len returns the number of pending entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Pending reports whether id is scheduled and has not fired yet.
func (s *Store) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Start launches the scan loop in the background.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	hasHandler := s.handler != nil
	s.mu.Unlock()
	if !hasHandler {
		return ErrNoHandler
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.logger.Info("trigger store started", slog.Duration("scan_interval", s.interval))
	return nil
}

// Stop halts the scan loop and waits for an in-progress scan to finish.
// No scan runs after Stop returns. Safe to call more than once.
func (s *Store) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("trigger store stopped")
}

// Run starts the store and blocks until ctx is done; suitable for errgroup.
func (s *Store) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		s.Stop()
		return nil
	}
}

func (s *Store) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan marks every due entry as triggered, removes it, and emits the
// unexpired ones after releasing the lock.
func (s *Store) scan(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var ready, expired []notifications.Notification
	for id, e := range s.entries {
		if e.triggered || e.at.After(now) {
			continue
		}
		e.triggered = true
		if e.notification.IsExpired(now) {
			expired = append(expired, e.notification)
		} else {
			ready = append(ready, e.notification)
		}
		delete(s.entries, id)
	}
	handler := s.handler
	s.mu.Unlock()

	for _, n := range expired {
		s.logger.DebugContext(ctx, "scheduled notification expired before firing", logger.NotificationID(n.ID))
		if s.onExpired != nil {
			s.safeCall(ctx, s.onExpired, n)
		}
	}

	for _, n := range ready {
		if ctx.Err() != nil {
			return
		}
		s.safeCall(ctx, handler, n)
	}
}

func (s *Store) safeCall(ctx context.Context, fn ReadyFunc, n notifications.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "ready handler panicked",
				logger.NotificationID(n.ID),
				slog.Any("panic", r),
			)
		}
	}()
	fn(ctx, n)
}
