// Package trigger holds notifications scheduled for a future instant and
// emits each one to a single registered handler when its time comes.
//
// A background loop scans the store on a fixed interval (one second by
// default). Every entry whose time is at or before the scan instant is
// removed in that scan. Entries that expired in the meantime are dropped
// without reaching the handler. Emission happens outside the store lock, so
// handlers may call back into the store.
//
//	store := trigger.New(trigger.WithLogger(log))
//	store.OnReady(func(ctx context.Context, n notifications.Notification) {
//		engine.HandleReady(ctx, n)
//	})
//	if err := store.Start(ctx); err != nil {
//		return err
//	}
//	defer store.Stop()
//
//	_ = store.Schedule(n, time.Now().Add(time.Hour))
//
// Scheduling a time in the past fails with ErrInvalidSchedule. Scheduling an
// id that is already pending replaces the earlier entry.
package trigger
