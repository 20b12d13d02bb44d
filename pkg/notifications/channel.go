package notifications

import "context"

// Channel transports notifications of one delivery type.
// Send failures should be returned as *ChannelError; the engine never retries.
type Channel interface {
	// Send delivers the notification.
	Send(ctx context.Context, n Notification) error

	// CancelSent withdraws an already delivered notification.
	// Channels that cannot withdraw treat it as a no-op.
	CancelSent(ctx context.Context, id string) error
}

// BulkCanceler is implemented by channels able to withdraw everything they sent.
type BulkCanceler interface {
	CancelAllSent(ctx context.Context) error
}

// ChannelFunc adapts a send function to a Channel without cancellation support.
type ChannelFunc func(ctx context.Context, n Notification) error

func (f ChannelFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }

func (f ChannelFunc) CancelSent(context.Context, string) error { return nil }
