package inapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Channel delivers notifications into per-user inboxes and notifies live subscribers.
type Channel struct {
	storage       notifications.Storage
	hub           *Hub
	defaultUserID string
	now           func() time.Time
	logger        *slog.Logger
}

// New creates an in-app channel on top of storage.
func New(storage notifications.Storage, opts ...Option) *Channel {
	c := &Channel{
		storage:       storage,
		defaultUserID: DefaultUserID,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hub == nil {
		c.hub = NewHub(DefaultBufferSize)
	}
	c.logger = c.logger.With(logger.Component("inapp"))
	return c
}

// Hub returns the realtime hub used for fan-out.
func (c *Channel) Hub() *Hub { return c.hub }

// Send stores n in the recipient's inbox and pushes it to live subscribers.
func (c *Channel) Send(ctx context.Context, n notifications.Notification) error {
	n.UserID = c.recipient(n.UserID)
	n.IsRead = false
	n.IsDismissed = false

	if err := c.storage.Create(ctx, n); err != nil {
		return notifications.NewChannelError(notifications.DeliveryInApp, n.ID, fmt.Errorf("store: %w", err))
	}

	delivered := c.hub.Publish(n.UserID, Event{
		Type:           EventNotification,
		UserID:         n.UserID,
		NotificationID: n.ID,
		Notification:   &n,
		At:             c.now(),
	})

	c.logger.DebugContext(ctx, "in-app notification stored",
		logger.NotificationID(n.ID),
		logger.UserID(n.UserID),
		slog.Int("subscribers", delivered))
	return nil
}

// CancelSent removes the notification from whichever inbox holds it.
// Unknown ids are a no-op.
func (c *Channel) CancelSent(ctx context.Context, id string) error {
	userID, err := c.storage.DeleteByID(ctx, id)
	if errors.Is(err, notifications.ErrNotificationNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("withdraw in-app notification %s: %w", id, err)
	}

	c.hub.Publish(userID, Event{
		Type:           EventWithdrawn,
		UserID:         userID,
		NotificationID: id,
		At:             c.now(),
	})
	return nil
}

// CancelAllSent tells every live subscriber to clear visible notifications.
// Inbox history is kept.
func (c *Channel) CancelAllSent(ctx context.Context) error {
	delivered := c.hub.PublishAll(Event{Type: EventCleared, At: c.now()})
	c.logger.DebugContext(ctx, "in-app notifications cleared", slog.Int("subscribers", delivered))
	return nil
}

// List returns the inbox of userID, newest first.
func (c *Channel) List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, error) {
	return c.storage.List(ctx, c.recipient(userID), opts)
}

// MarkRead marks notifications of userID as read.
func (c *Channel) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.storage.MarkRead(ctx, c.recipient(userID), ids...)
}

// Dismiss hides notifications of userID from default listings.
func (c *Channel) Dismiss(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.storage.Dismiss(ctx, c.recipient(userID), ids...)
}

// CountUnread returns the number of unread, unexpired notifications of userID.
func (c *Channel) CountUnread(ctx context.Context, userID string) (int, error) {
	return c.storage.CountUnread(ctx, c.recipient(userID))
}

// Subscribe attaches a realtime listener to userID's inbox until ctx is done.
func (c *Channel) Subscribe(ctx context.Context, userID string) *Subscription {
	return c.hub.Subscribe(ctx, c.recipient(userID))
}

// Close closes every realtime subscription.
func (c *Channel) Close() error {
	return c.hub.Close()
}

func (c *Channel) recipient(userID string) string {
	if userID == "" {
		return c.defaultUserID
	}
	return userID
}
