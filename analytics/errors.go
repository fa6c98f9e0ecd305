package analytics

import (
	"errors"
	"fmt"
)

// ErrNilRequest is returned when RunReport is called without a request.
var ErrNilRequest = errors.New("analytics: nil report request")

// UpstreamError reports a failed Data API call.
type UpstreamError struct {
	Property string
	// StatusCode is the HTTP status of the failed call, 0 if none was received.
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analytics: runReport for %s failed with status %d: %v", e.Property, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analytics: runReport for %s failed: %v", e.Property, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
