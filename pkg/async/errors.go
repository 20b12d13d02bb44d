package async

import "errors"

var (
	ErrTimeout       = errors.New("async: operation timed out waiting for future completion")
	ErrPoolClosed    = errors.New("async: pool is closed")
	ErrPoolSaturated = errors.New("async: pool has no free slot")
	ErrPanic         = errors.New("async: task panicked")
)
