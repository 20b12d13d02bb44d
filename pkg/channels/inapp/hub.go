package inapp

import (
	"context"
	"sync"
)

// Hub fans events out to live subscribers of a user's inbox.
// Sends never block: a subscriber whose buffer is full is closed and removed.
// All methods are safe for concurrent use.
type Hub struct {
	subscribers map[string]map[*Subscription]struct{} // userID -> subscriptions
	bufferSize  int
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// NewHub creates a hub. bufferSize below 1 is raised to 1.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscription]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// Subscription is one live listener on a user's inbox.
type Subscription struct {
	userID string
	ch     chan Event
	closed bool
	mu     sync.RWMutex
}

// Events returns the receive side. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event { return s.ch }

// UserID returns the inbox owner the subscription listens to.
func (s *Subscription) UserID() string { return s.userID }

// Close ends the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *Subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// Subscribe registers a listener for userID, removed when ctx is done.
// A closed hub returns an already closed subscription.
func (h *Hub) Subscribe(ctx context.Context, userID string) *Subscription {
	sub := &Subscription{userID: userID, ch: make(chan Event, h.bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = sub.Close()
		return sub
	}

	subs, ok := h.subscribers[userID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.subscribers[userID] = subs
	}
	subs[sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			select {
			case <-ctx.Done():
				h.unsubscribe(sub)
			case <-h.done:
			}
		}()
	}

	return sub
}

// Publish delivers ev to every subscriber of userID and returns how many received it.
func (h *Hub) Publish(userID string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0
	}
	return h.publishLocked(h.subscribers[userID], ev)
}

// PublishAll delivers ev to every subscriber of every user.
func (h *Hub) PublishAll(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0
	}

	delivered := 0
	for _, subs := range h.subscribers {
		delivered += h.publishLocked(subs, ev)
	}
	return delivered
}

func (h *Hub) publishLocked(subs map[*Subscription]struct{}, ev Event) int {
	delivered := 0
	for sub := range subs {
		if sub.send(ev) {
			delivered++
			continue
		}
		// Removal needs the write lock.
		go h.unsubscribe(sub)
	}
	return delivered
}

// SubscriberCount returns the number of live subscribers of userID.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Close closes every subscription. Later subscriptions are returned closed.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)

	for _, subs := range h.subscribers {
		for sub := range subs {
			_ = sub.Close()
		}
	}
	clear(h.subscribers)
	h.mu.Unlock()

	h.cleanupWg.Wait()
	return nil
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[sub.userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, sub.userID)
		}
	}
	_ = sub.Close()
}
