package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// NetworkError indicates the underlying transport could not complete the call.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError indicates no response arrived within the configured timeout.
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s %s: %v", e.Timeout, e.Method, e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// classifyTransportError maps a transport failure onto the error kinds callers
// branch on. Timeouts (client deadline or context deadline) become
// TimeoutError, everything else NetworkError.
func classifyTransportError(method, url string, timeout time.Duration, err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &TimeoutError{Method: method, URL: url, Timeout: timeout, Err: err}
	}
	return &NetworkError{Method: method, URL: url, Err: err}
}
