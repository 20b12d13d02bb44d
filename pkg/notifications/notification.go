package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeliveryType selects the channel a notification leaves the engine through.
type DeliveryType string

const (
	DeliveryPush  DeliveryType = "push"
	DeliveryInApp DeliveryType = "in_app"
	DeliveryEmail DeliveryType = "email"
)

// DeliveryTypes lists every supported delivery type.
var DeliveryTypes = []DeliveryType{DeliveryPush, DeliveryInApp, DeliveryEmail}

// Valid reports whether d is one of the supported delivery types.
func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryPush, DeliveryInApp, DeliveryEmail:
		return true
	}
	return false
}

// Category is the closed set of notification categories users can opt out of.
type Category string

const (
	CategorySystem      Category = "system"
	CategoryReminder    Category = "reminder"
	CategoryActivity    Category = "activity"
	CategoryAchievement Category = "achievement"
	CategoryPromotion   Category = "promotion"
	CategoryUpdate      Category = "update"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategorySystem,
	CategoryReminder,
	CategoryActivity,
	CategoryAchievement,
	CategoryPromotion,
	CategoryUpdate,
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority affects channel presentation only, never engine ordering.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority maps a priority name back to its value.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal", "":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return 0, fmt.Errorf("%w: unknown priority %q", ErrInvalidNotification, s)
}

// Notification is the value object that flows through the engine.
// It is not mutated after creation; IsRead and IsDismissed belong to clients.
type Notification struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id,omitempty"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	DeepLink     string            `json:"deep_link,omitempty"`
	DeliveryType DeliveryType      `json:"delivery_type"`
	Category     Category          `json:"category"`
	Priority     Priority          `json:"priority"`
	GroupID      string            `json:"group_id,omitempty"`
	ExtraData    map[string]string `json:"extra_data,omitempty"` // template substitution only
	CreatedAt    time.Time         `json:"created_at"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
	IsRead       bool              `json:"is_read"`
	IsDismissed  bool              `json:"is_dismissed"`
}

// Option customizes a notification built by New.
type Option func(*Notification)

// WithID replaces the generated ID. Empty values are ignored.
func WithID(id string) Option {
	return func(n *Notification) {
		if id != "" {
			n.ID = id
		}
	}
}

// WithUserID sets the recipient used by per-user channels.
func WithUserID(userID string) Option {
	return func(n *Notification) { n.UserID = userID }
}

// WithDeepLink sets the link opened when the notification is tapped.
func WithDeepLink(link string) Option {
	return func(n *Notification) { n.DeepLink = link }
}

// WithPriority sets the presentation priority.
func WithPriority(p Priority) Option {
	return func(n *Notification) { n.Priority = p }
}

// WithGroupID sets the client-side grouping key.
func WithGroupID(groupID string) Option {
	return func(n *Notification) { n.GroupID = groupID }
}

// WithExtraData sets one template substitution value.
func WithExtraData(key, value string) Option {
	return func(n *Notification) {
		if n.ExtraData == nil {
			n.ExtraData = make(map[string]string)
		}
		n.ExtraData[key] = value
	}
}

// WithExpiresAt sets the absolute expiry time.
func WithExpiresAt(t time.Time) Option {
	return func(n *Notification) { n.ExpiresAt = &t }
}

// WithTTL expires the notification ttl after its creation time.
func WithTTL(ttl time.Duration) Option {
	return func(n *Notification) {
		t := n.CreatedAt.Add(ttl)
		n.ExpiresAt = &t
	}
}

// WithCreatedAt overrides the creation timestamp.
// Apply it before WithTTL, which is relative to CreatedAt.
func WithCreatedAt(t time.Time) Option {
	return func(n *Notification) { n.CreatedAt = t }
}

// New builds a notification with a fresh unique ID and validates it.
func New(title, body string, deliveryType DeliveryType, category Category, opts ...Option) (Notification, error) {
	n := Notification{
		ID:           uuid.New().String(),
		Title:        title,
		Body:         body,
		DeliveryType: deliveryType,
		Category:     category,
		Priority:     PriorityNormal,
		CreatedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(&n)
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Validate checks the record invariants.
func (n Notification) Validate() error {
	switch {
	case n.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidNotification)
	case !n.DeliveryType.Valid():
		return fmt.Errorf("%w: unknown delivery type %q", ErrInvalidNotification, n.DeliveryType)
	case !n.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidNotification, n.Category)
	case n.Priority < PriorityLow || n.Priority > PriorityCritical:
		return fmt.Errorf("%w: unknown priority %d", ErrInvalidNotification, int(n.Priority))
	case n.ExpiresAt != nil && n.ExpiresAt.Before(n.CreatedAt):
		return fmt.Errorf("%w: expires_at precedes created_at", ErrInvalidNotification)
	}
	return nil
}

// IsExpired reports whether now is strictly after the expiry time.
func (n Notification) IsExpired(now time.Time) bool {
	if n.ExpiresAt == nil {
		return false
	}
	return now.After(*n.ExpiresAt)
}
