package counter

import "errors"

var (
	// ErrInvalidValue is returned for a requested count below zero. The
	// provider is never contacted for such a request.
	ErrInvalidValue = errors.New("badge count must not be negative")

	// ErrProviderFailure wraps any error returned by the badge provider.
	ErrProviderFailure = errors.New("badge provider failure")
)
