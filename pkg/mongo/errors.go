package mongo

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("mongo: empty connection url")
	ErrConnect            = errors.New("mongo: connect failed")
	ErrHealthcheckFailed  = errors.New("mongo: ping failed")
)
