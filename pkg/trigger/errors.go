package trigger

import "errors"

var (
	// ErrInvalidSchedule is returned when the schedule time is already in the past.
	ErrInvalidSchedule = errors.New("trigger: schedule time is in the past")

	// ErrNoHandler is returned by Start when no ready handler is registered.
	ErrNoHandler = errors.New("trigger: no ready handler registered")

	// ErrAlreadyStarted is returned by Start on a running store.
	ErrAlreadyStarted = errors.New("trigger: already started")
)
