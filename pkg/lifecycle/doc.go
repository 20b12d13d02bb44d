// Package lifecycle tracks where each notification is in the engine.
//
// The graph is fixed:
//
//	Created -> Scheduled -> Triggered -> PolicyCheck
//	Created -> Immediate -> PolicyCheck
//	PolicyCheck -> Dispatched | Deferred | Dropped
//	Deferred -> PolicyRecheck -> Dispatched | Deferred | Dropped
//
// Scheduled, Triggered, Immediate and Deferred may also go straight to
// Dropped. Dispatched and Dropped are terminal. A Tracker keeps a bounded
// number of records; once full it forgets finished notifications before
// in-flight ones.
//
//	t := lifecycle.NewTracker(10_000)
//	if _, err := t.Fire(id, lifecycle.EventSchedule, ""); lifecycle.IsNoTransition(err) {
//		// id already left Scheduled
//	}
//	st, _ := t.Status(id)
package lifecycle
