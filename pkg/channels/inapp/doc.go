// Package inapp implements the in-app delivery channel.
//
// Delivered notifications are written to a per-user inbox (any
// notifications.Storage) and pushed to live subscribers through a Hub.
// Fan-out never blocks delivery: a subscriber that cannot keep up is
// disconnected.
//
//	ch := inapp.New(notifications.NewMemoryStorage())
//	sub := ch.Subscribe(ctx, "user-1")
//	for ev := range sub.Events() {
//		// ev.Type is notification, withdrawn or cleared
//	}
//
// Notifications without a UserID go to the inbox named by WithDefaultUserID.
// CancelSent removes the notification from its inbox and emits a withdrawn
// event to its owner. CancelAllSent only emits a cleared event; stored
// history stays readable.
package inapp
