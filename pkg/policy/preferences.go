package policy

import (
	"slices"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Preferences is the persisted policy document, one per user.
type Preferences struct {
	PushEnabled            bool              `json:"pushEnabled"`
	InAppEnabled           bool              `json:"inAppEnabled"`
	EmailEnabled           bool              `json:"emailEnabled"`
	CategorySettings       []CategorySetting `json:"categorySettings"`
	QuietHoursStart        int               `json:"quietHoursStart"`
	QuietHoursEnd          int               `json:"quietHoursEnd"`
	MaxNotificationsPerDay int               `json:"maxNotificationsPerDay"`
	Timezone               string            `json:"timezone,omitempty"`
	Email                  string            `json:"email,omitempty"`
}

// CategorySetting toggles a single category.
type CategorySetting struct {
	Category notifications.Category `json:"category"`
	Enabled  bool                   `json:"enabled"`
}

// DefaultPreferences enables every channel and category with the configured
// quiet hours and daily cap.
func DefaultPreferences(cfg Config) Preferences {
	settings := make([]CategorySetting, 0, len(notifications.Categories))
	for _, c := range notifications.Categories {
		settings = append(settings, CategorySetting{Category: c, Enabled: true})
	}
	return Preferences{
		PushEnabled:            true,
		InAppEnabled:           true,
		EmailEnabled:           true,
		CategorySettings:       settings,
		QuietHoursStart:        clampHour(cfg.DefaultQuietHoursStart),
		QuietHoursEnd:          clampHour(cfg.DefaultQuietHoursEnd),
		MaxNotificationsPerDay: max(cfg.DefaultMaxPerDay, 0),
	}
}

// ChannelEnabled reports the global toggle of the channel owning dt.
func (p Preferences) ChannelEnabled(dt notifications.DeliveryType) bool {
	switch dt {
	case notifications.DeliveryPush:
		return p.PushEnabled
	case notifications.DeliveryInApp:
		return p.InAppEnabled
	case notifications.DeliveryEmail:
		return p.EmailEnabled
	}
	return false
}

// CategoryEnabled reports the category toggle; categories without an entry are enabled.
func (p Preferences) CategoryEnabled(c notifications.Category) bool {
	for _, s := range p.CategorySettings {
		if s.Category == c {
			return s.Enabled
		}
	}
	return true
}

func (p *Preferences) setChannel(dt notifications.DeliveryType, enabled bool) {
	switch dt {
	case notifications.DeliveryPush:
		p.PushEnabled = enabled
	case notifications.DeliveryInApp:
		p.InAppEnabled = enabled
	case notifications.DeliveryEmail:
		p.EmailEnabled = enabled
	}
}

func (p *Preferences) setCategory(c notifications.Category, enabled bool) {
	for i := range p.CategorySettings {
		if p.CategorySettings[i].Category == c {
			p.CategorySettings[i].Enabled = enabled
			return
		}
	}
	p.CategorySettings = append(p.CategorySettings, CategorySetting{Category: c, Enabled: enabled})
}

// quietHoursBlock reports whether hour falls inside the blocked window.
// start <= end blocks [start, end); start > end wraps midnight.
func quietHoursBlock(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// normalize clamps ranges, drops unknown or duplicate categories (last entry
// wins) and clears an unparseable timezone. It reports whether the timezone
// was cleared.
func (p Preferences) normalize() (Preferences, bool) {
	p.QuietHoursStart = clampHour(p.QuietHoursStart)
	p.QuietHoursEnd = clampHour(p.QuietHoursEnd)
	p.MaxNotificationsPerDay = max(p.MaxNotificationsPerDay, 0)

	settings := make([]CategorySetting, 0, len(p.CategorySettings))
	for _, s := range p.CategorySettings {
		if !s.Category.Valid() {
			continue
		}
		idx := slices.IndexFunc(settings, func(x CategorySetting) bool { return x.Category == s.Category })
		if idx >= 0 {
			settings[idx] = s
			continue
		}
		settings = append(settings, s)
	}
	p.CategorySettings = settings

	clearedTZ := false
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			p.Timezone = ""
			clearedTZ = true
		}
	}
	return p, clearedTZ
}

func (p Preferences) clone() Preferences {
	p.CategorySettings = slices.Clone(p.CategorySettings)
	return p
}

func clampHour(h int) int {
	return min(max(h, 0), 23)
}
