package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamAnalysis marks an oracle call that failed or returned an
	// un-parseable structured payload.
	ErrUpstreamAnalysis = errors.New("upstream analysis failed")
)
