package lifecycle

import (
	"errors"
	"fmt"
)

// ErrUnknownNotification is returned for ids the tracker holds no record of.
var ErrUnknownNotification = errors.New("lifecycle: unknown notification")

// NoTransitionError reports an event that has no edge out of the current state.
type NoTransitionError struct {
	ID    string
	State State
	Event Event
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: notification %s: no transition from %q on %q", e.ID, e.State, e.Event)
}

// IsNoTransition reports whether err is a *NoTransitionError.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}
