package entity

import "errors"

// Standard domain errors
var (
	ErrEmptyQuery         = errors.New("no customer input provided")
	ErrUsageLimitExceeded = errors.New("usage limit exceeded: too many completion tokens used")
	ErrInvalidRequest     = errors.New("invalid request parameters")
)
