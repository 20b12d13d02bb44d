package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("redis: empty connection url")
	ErrInvalidURL         = errors.New("redis: invalid connection url")
	ErrNotReady           = errors.New("redis: server not ready before connect timeout")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
