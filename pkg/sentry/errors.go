package sentry

import "errors"

var (
	ErrNilConfig     = errors.New("sentry: nil config")
	ErrInvalidConfig = errors.New("sentry: invalid config")
	// ErrInvalidDSN DSN 为空或无法解析
	ErrInvalidDSN = errors.New("sentry: invalid DSN")
	// ErrClientClosed Close 之后再上报
	ErrClientClosed = errors.New("sentry: client closed")
)
