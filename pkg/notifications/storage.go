package notifications

import (
	"context"
	"time"
)

// Storage is the per-user inbox behind the in-app channel.
type Storage interface {
	// Create stores a delivered notification in the recipient's inbox.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification.
	Get(ctx context.Context, userID, notifID string) (*Notification, error)

	// List returns notifications for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead sets IsRead on the given notifications.
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error

	// Dismiss sets IsDismissed on the given notifications.
	Dismiss(ctx context.Context, userID string, notifIDs ...string) error

	// Delete removes notification(s).
	Delete(ctx context.Context, userID string, notifIDs ...string) error

	// DeleteByID removes a notification from whichever inbox holds it
	// and returns the owning user ID.
	DeleteByID(ctx context.Context, notifID string) (string, error)

	// CountUnread returns unread count for user.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination options for listing notifications.
type ListOptions struct {
	Limit         int // 0 = no limit
	Offset        int
	OnlyUnread    bool
	SkipDismissed bool
	Categories    []Category // empty = all categories
	Since         *time.Time // only notifications created after this time
}
