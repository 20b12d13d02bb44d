package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Store holds one user's delivery policy: channel and category toggles,
// the quiet-hours window and the daily cap with its per-day counters.
// Every setter persists the full document; a failed save is logged and
// returned, and the in-memory change is kept.
type Store struct {
	repo   Repository
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	// persistMu orders snapshot+save pairs so saves land in mutation order.
	persistMu sync.Mutex

	mu       sync.RWMutex
	prefs    Preferences
	location *time.Location // nil = location of the clock
	sent     map[string]int // calendar date -> dispatches
}

// New creates a store holding default preferences. Call Load to read the
// persisted document.
func New(repo Repository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	s := &Store{
		repo:   repo,
		cfg:    DefaultConfig(),
		now:    time.Now,
		logger: slog.Default(),
		sent:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.prefs = DefaultPreferences(s.cfg)

	return s, nil
}

// UserID returns the key the preferences are persisted under.
func (s *Store) UserID() string {
	return s.cfg.UserID
}

// Load replaces the in-memory preferences with the persisted document.
// A missing document keeps the defaults. Read or decode failures are logged,
// keep the defaults, and are returned wrapped in ErrLoadPreferences.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.repo.Load(ctx, s.cfg.UserID)
	if errors.Is(err, ErrNotFound) {
		s.logger.DebugContext(ctx, "No stored preferences, using defaults", logger.UserID(s.cfg.UserID))
		return nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load preferences", logger.UserID(s.cfg.UserID), logger.Error(err))
		return errors.Join(ErrLoadPreferences, err)
	}

	prefs := DefaultPreferences(s.cfg)
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.ErrorContext(ctx, "Stored preferences are corrupt, using defaults",
			logger.UserID(s.cfg.UserID),
			logger.Error(err),
		)
		return errors.Join(ErrLoadPreferences, err)
	}

	s.mu.Lock()
	s.apply(ctx, prefs)
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current preferences.
func (s *Store) Snapshot() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.clone()
}

// IsChannelEnabled reports the global toggle for a delivery type.
func (s *Store) IsChannelEnabled(dt notifications.DeliveryType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.ChannelEnabled(dt)
}

// IsCategoryEnabled is false when the channel owning dt is globally disabled
// or the category is explicitly disabled. Categories without an entry are enabled.
func (s *Store) IsCategoryEnabled(dt notifications.DeliveryType, c notifications.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.ChannelEnabled(dt) && s.prefs.CategoryEnabled(c)
}

// IsOutsideQuietHours reports whether sending is allowed at now.
func (s *Store) IsOutsideQuietHours(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.location != nil {
		now = now.In(s.location)
	}
	return !quietHoursBlock(now.Hour(), s.prefs.QuietHoursStart, s.prefs.QuietHoursEnd)
}

// CanSendToday reports whether today's counter is below the daily cap.
func (s *Store) CanSendToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.purgeCounters()
	return s.sent[today] < s.prefs.MaxNotificationsPerDay
}

// RecordSent increments today's counter.
func (s *Store) RecordSent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.purgeCounters()
	s.sent[today]++
}

// SentToday returns the number of dispatches recorded today.
func (s *Store) SentToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sent[s.purgeCounters()]
}

// EmailAddress returns the persisted email address, if any.
func (s *Store) EmailAddress() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Email, s.prefs.Email != ""
}

// SetChannelEnabled toggles a whole delivery channel.
func (s *Store) SetChannelEnabled(ctx context.Context, dt notifications.DeliveryType, enabled bool) error {
	if !dt.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, dt)
	}
	return s.update(ctx, func(p *Preferences) { p.setChannel(dt, enabled) })
}

// SetCategoryEnabled toggles a single category.
func (s *Store) SetCategoryEnabled(ctx context.Context, c notifications.Category, enabled bool) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return s.update(ctx, func(p *Preferences) { p.setCategory(c, enabled) })
}

// SetQuietHours sets the blocked window; hours are clamped to 0..23.
func (s *Store) SetQuietHours(ctx context.Context, start, end int) error {
	return s.update(ctx, func(p *Preferences) {
		p.QuietHoursStart = start
		p.QuietHoursEnd = end
	})
}

// SetMaxPerDay sets the daily cap; negative values become 0.
func (s *Store) SetMaxPerDay(ctx context.Context, n int) error {
	return s.update(ctx, func(p *Preferences) { p.MaxNotificationsPerDay = n })
}

// SetTimezone sets the IANA zone quiet hours and day boundaries are evaluated in.
// An empty name reverts to the clock's location.
func (s *Store) SetTimezone(ctx context.Context, tz string) error {
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return errors.Join(ErrInvalidTimezone, err)
		}
	}
	return s.update(ctx, func(p *Preferences) { p.Timezone = tz })
}

// SetEmail sets the destination address used by the email channel.
func (s *Store) SetEmail(ctx context.Context, email string) error {
	return s.update(ctx, func(p *Preferences) { p.Email = email })
}

// Replace swaps the whole document, normalizing it first.
func (s *Store) Replace(ctx context.Context, prefs Preferences) error {
	if prefs.Timezone != "" {
		if _, err := time.LoadLocation(prefs.Timezone); err != nil {
			return errors.Join(ErrInvalidTimezone, err)
		}
	}
	return s.update(ctx, func(p *Preferences) { *p = prefs.clone() })
}

func (s *Store) update(ctx context.Context, mutate func(*Preferences)) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	prefs := s.prefs.clone()
	mutate(&prefs)
	s.apply(ctx, prefs)
	snapshot := s.prefs.clone()
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// apply normalizes prefs and installs them. Callers hold s.mu.
func (s *Store) apply(ctx context.Context, prefs Preferences) {
	prefs, clearedTZ := prefs.normalize()
	if clearedTZ {
		s.logger.WarnContext(ctx, "Ignoring unknown timezone in preferences", logger.UserID(s.cfg.UserID))
	}
	s.prefs = prefs

	s.location = nil
	if prefs.Timezone != "" {
		if loc, err := time.LoadLocation(prefs.Timezone); err == nil {
			s.location = loc
		}
	}
}

func (s *Store) persist(ctx context.Context, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return errors.Join(ErrPreferencePersistence, err)
	}

	if s.cfg.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SaveTimeout)
		defer cancel()
	}

	if err := s.repo.Save(ctx, s.cfg.UserID, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist preferences",
			logger.UserID(s.cfg.UserID),
			logger.Error(err),
		)
		return errors.Join(ErrPreferencePersistence, err)
	}
	return nil
}

// purgeCounters drops counters of every date except today and returns
// today's key. Callers hold s.mu.
func (s *Store) purgeCounters() string {
	now := s.now()
	if s.location != nil {
		now = now.In(s.location)
	}
	today := now.Format(time.DateOnly)
	for day := range s.sent {
		if day != today {
			delete(s.sent, day)
		}
	}
	return today
}
