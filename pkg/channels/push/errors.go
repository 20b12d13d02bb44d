package push

import "errors"

var (
	ErrNoBrokers   = errors.New("push: no kafka brokers configured")
	ErrEmptyTopic  = errors.New("push: topic is required")
	ErrPublish     = errors.New("push: failed to publish message")
	ErrEncodeEvent = errors.New("push: failed to encode message")
)
