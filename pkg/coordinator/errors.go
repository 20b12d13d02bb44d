package coordinator

import "errors"

var (
	ErrPolicyNil      = errors.New("coordinator: policy cannot be nil")
	ErrUnknownChannel = errors.New("coordinator: no channel registered for delivery type")
	ErrDuplicateID    = errors.New("coordinator: notification id already in use")
	ErrAlreadyStarted = errors.New("coordinator: already started")
	ErrStopped        = errors.New("coordinator: engine is stopped")
	ErrNotFound       = errors.New("coordinator: notification not found")
)
