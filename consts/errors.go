package consts

import (
	"context"
	"errors"
)

// Failure taxonomy. Every adapter and indicator wraps one of these with %w so
// callers can classify a failure with errors.Is.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrNetworkFailure      = errors.New("network failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrNoMatchingRecords   = errors.New("no matching records")
)

// Cause maps an error onto a short label for logs and metrics.
func Cause(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrNoMatchingRecords):
		return "no_matching_records"
	default:
		return "other"
	}
}
