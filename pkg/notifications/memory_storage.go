package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory inbox. Suitable for development, tests and
// single-instance deployments.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
	now           func() time.Time
}

// NewMemoryStorage creates a new in-memory inbox.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
		now:           time.Now,
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.ID == "" {
		return errors.New("notification ID is required")
	}
	if notif.UserID == "" {
		return errors.New("user ID is required")
	}

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}

	// Redelivery of the same id replaces the earlier copy.
	inbox := s.notifications[notif.UserID]
	for i := range inbox {
		if inbox[i].ID == notif.ID {
			inbox[i] = notif
			return nil
		}
	}
	s.notifications[notif.UserID] = append(inbox, notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			notif := n
			return &notif, nil
		}
	}

	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	filtered := make([]Notification, 0, len(s.notifications[userID]))
	for _, n := range s.notifications[userID] {
		if n.IsExpired(now) {
			continue
		}
		if opts.OnlyUnread && n.IsRead {
			continue
		}
		if opts.SkipDismissed && n.IsDismissed {
			continue
		}
		if len(opts.Categories) > 0 && !slices.Contains(opts.Categories, n.Category) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}

	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	s.update(userID, notifIDs, func(n *Notification) { n.IsRead = true })
	return nil
}

func (s *MemoryStorage) Dismiss(ctx context.Context, userID string, notifIDs ...string) error {
	s.update(userID, notifIDs, func(n *Notification) { n.IsDismissed = true })
	return nil
}

func (s *MemoryStorage) update(userID string, notifIDs []string, fn func(*Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.notifications[userID]
	for i := range inbox {
		if slices.Contains(notifIDs, inbox[i].ID) {
			fn(&inbox[i])
		}
	}
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox, exists := s.notifications[userID]
	if !exists {
		return nil
	}

	s.notifications[userID] = slices.DeleteFunc(inbox, func(n Notification) bool {
		return slices.Contains(notifIDs, n.ID)
	})
	return nil
}

func (s *MemoryStorage) DeleteByID(ctx context.Context, notifID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, inbox := range s.notifications {
		for i := range inbox {
			if inbox[i].ID == notifID {
				s.notifications[userID] = slices.Delete(inbox, i, i+1)
				return userID, nil
			}
		}
	}
	return "", ErrNotificationNotFound
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	count := 0
	for _, n := range s.notifications[userID] {
		if !n.IsRead && !n.IsExpired(now) {
			count++
		}
	}

	return count, nil
}
