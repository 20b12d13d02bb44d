package queue

import "errors"

var (
	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	// The rejected notification is not stored.
	ErrQueueFull = errors.New("queue: capacity reached")

	// ErrNoHandler is returned by Start when no ready handler is registered.
	ErrNoHandler = errors.New("queue: no ready handler registered")

	// ErrAlreadyStarted is returned by Start on a running queue.
	ErrAlreadyStarted = errors.New("queue: already started")
)
