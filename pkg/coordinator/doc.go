// Package coordinator is the notification engine. It owns a trigger store for
// scheduled notifications and a deferred queue for notifications held back
// by quiet hours, evaluates the user's policy whenever a notification becomes
// ready, and routes it to the channel registered for its delivery type.
//
// # Policy pipeline
//
// Every ready notification, whether it fired from the trigger store, was
// drained from the queue or was passed to SendImmediate, goes through
// HandleReady:
//
//  1. expired records are dropped
//  2. a disabled channel or category drops the record
//  3. during quiet hours the record is deferred to the queue; a full queue drops it
//  4. with EnforceDailyCap set, a reached daily cap drops the record
//  5. otherwise the record is sent through its channel
//
// Sends run in a bounded background pool and never block the scan or drain
// loops. When MaxInFlight sends are running and DispatchBacklog more are
// waiting, further records are dropped as backpressure. A failed send is
// logged and affects only that notification; the engine does not retry. A
// channel returning notifications.ErrNoRecipient drops the record instead.
//
// # Usage
//
//	engine, err := coordinator.New(prefs,
//		coordinator.WithConfig(cfg),
//		coordinator.WithChannel(notifications.DeliveryPush, pushChannel),
//		coordinator.WithChannel(notifications.DeliveryInApp, inAppChannel),
//		coordinator.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	if err := engine.Start(ctx); err != nil {
//		return err
//	}
//	defer engine.Stop()
//
//	err = engine.ScheduleNotification(ctx, n, time.Now().Add(time.Hour))
//	if errors.Is(err, trigger.ErrInvalidSchedule) {
//		// the time is in the past
//	}
//
// Status reports where a recently seen notification is in its lifecycle.
package coordinator
