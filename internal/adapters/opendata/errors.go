package opendata

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream errors.
var (
	// ErrUpstream matches every error returned by Client.Records.
	ErrUpstream = errors.New("upstream failure")
	// ErrNoResults means the body decoded but had no results array.
	ErrNoResults = errors.New("response has no results field")
)

// Error wraps a failed fetch. errors.Is(err, ErrUpstream) is always true.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUpstream, e.Err)
}

func (e *Error) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}
