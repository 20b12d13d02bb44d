// Package notifications defines the notification record that flows through
// the engine, the Channel contract implemented by push, in-app and email
// transports, and the per-user inbox used by the in-app channel.
//
// # Records
//
// Build records with New so every notification gets a unique ID and is
// validated before it reaches the engine:
//
//	n, err := notifications.New("Daily goal", "Ten minutes left",
//	    notifications.DeliveryPush, notifications.CategoryReminder,
//	    notifications.WithPriority(notifications.PriorityHigh),
//	    notifications.WithTTL(time.Hour),
//	)
//
// A record is expired once the current time is strictly after ExpiresAt.
//
// # Channels
//
// A Channel sends one delivery type. Send failures are reported as
// *ChannelError and are never retried by the engine. CancelSent is
// best-effort; channels that cannot withdraw a delivered notification
// return nil.
//
// # Inbox
//
// MemoryStorage keeps delivered in-app notifications per user and supports
// listing, read and dismiss flags, and unread counts.
package notifications
