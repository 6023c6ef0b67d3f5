package ports

import (
	"context"
	"errors"

	"callguard/pkg/platform/sentinel"
)

var (
	// ErrBindFailed is returned by binders when a screener cannot be reached.
	ErrBindFailed = errors.New("screener bind failed")
	// ErrCircuitOpen is returned by binders while a screener's breaker is open.
	ErrCircuitOpen = errors.New("screener circuit open")
	// ErrReleased is returned when a released connection is used.
	ErrReleased = errors.New("connection released")
)

// Failure kinds used as metric labels.
const (
	FailureBind       = "bind_failure"
	FailureLookup     = "lookup_failure"
	FailureDisconnect = "disconnect"
	FailureTimeout    = "timeout"
	FailureUnknown    = "unknown"
)

// FailureKind classifies err for metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBindFailed), errors.Is(err, ErrCircuitOpen):
		return FailureBind
	case errors.Is(err, ErrReleased):
		return FailureDisconnect
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, sentinel.ErrNotFound):
		return FailureLookup
	default:
		return FailureUnknown
	}
}
