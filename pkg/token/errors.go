package token

import "errors"

var (
	ErrInvalidLength       = errors.New("token length must be positive")
	ErrRandomSourceFailure = errors.New("failed to read random bytes")
)
