package accesskit

import "errors"

var (
	ErrInvalidConfig     = errors.New("accesskit: invalid configuration")
	ErrHealthcheckFailed = errors.New("accesskit: healthcheck failed")
)
