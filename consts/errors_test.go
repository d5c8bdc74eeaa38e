package consts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCause(t *testing.T) {
	cases := map[string]error{
		"none":                 nil,
		"timeout":              fmt.Errorf("%w: %w", ErrNetworkFailure, context.DeadlineExceeded),
		"missing_credential":   fmt.Errorf("fred: %w", ErrMissingCredential),
		"network_failure":      fmt.Errorf("%w: HTTP 502", ErrNetworkFailure),
		"malformed_response":   fmt.Errorf("%w: unexpected EOF", ErrMalformedResponse),
		"insufficient_history": fmt.Errorf("rsi: %w", ErrInsufficientHistory),
		"no_matching_records":  ErrNoMatchingRecords,
		"other":                errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, Cause(err), "error %v", err)
	}
}
