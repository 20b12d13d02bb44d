// Package queue implements the deferred delivery queue: a bounded, in-memory
// FIFO for notifications that policy refused to send right away.
//
// A single goroutine drains the queue on a fixed cadence (500ms by default),
// popping at most one notification per tick and handing it to the registered
// ReadyFunc. Expired notifications are popped and dropped without reaching
// the handler.
//
// Pacing never blocks the loop. WithGate skips ticks while a predicate is
// false, for example during quiet hours, and WithMinSpacing skips ticks that
// arrive too soon after the previous hand-off.
//
//	q := queue.New(
//		queue.WithCapacity(100),
//		queue.WithGate(prefs.IsOutsideQuietHours),
//	)
//	q.OnReady(engine.HandleReady)
//	if err := q.Start(ctx); err != nil {
//		return err
//	}
//	defer q.Stop()
//
//	if err := q.Enqueue(n); errors.Is(err, queue.ErrQueueFull) {
//		// n was dropped
//	}
package queue
