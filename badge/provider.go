// Package badge defines the platform facing collaborators of the counter:
// the badge store (Provider) and the application identity (Identity), plus
// two store implementations. MemoryProvider keeps counts in process;
// FileProvider shares them between processes through a watched YAML file.
//
// Providers confirm changes asynchronously: SetCount only reports whether
// the request was accepted, and the new value reaches callers through the
// listeners registered with AddChangeListener.
package badge

import (
	"context"
	"errors"
)

var (
	// ErrIdentityUnavailable is returned when the application identity
	// cannot be resolved.
	ErrIdentityUnavailable = errors.New("application identity unavailable")

	// ErrUnknownApp is returned for an empty application ID.
	ErrUnknownApp = errors.New("unknown application")

	// ErrNegativeCount is returned when a store is asked to hold a value
	// below zero.
	ErrNegativeCount = errors.New("negative badge count")

	// ErrClosed is returned by providers after Close.
	ErrClosed = errors.New("badge provider closed")
)

// ChangeFunc receives badge change notifications.
type ChangeFunc func(appID string, count int)

// Provider is the badge store of the host platform.
type Provider interface {
	// Count returns the badge value currently stored for appID.
	Count(ctx context.Context, appID string) (int, error)

	// SetCount asks the store to change the badge value. A nil error only
	// means the request was accepted; the new value is confirmed through
	// the change listeners.
	SetCount(ctx context.Context, appID string, count int) error

	// AddChangeListener registers fn for changes of appID's badge. The
	// returned function removes the listener.
	AddChangeListener(appID string, fn ChangeFunc) (func(), error)
}

// Identity resolves the running application's ID.
type Identity interface {
	CurrentApplicationID() (string, error)
}

// StaticIdentity is an Identity with a fixed, configured ID.
type StaticIdentity string

// CurrentApplicationID returns the configured ID or ErrIdentityUnavailable
// when none is set.
func (s StaticIdentity) CurrentApplicationID() (string, error) {
	if s == "" {
		return "", ErrIdentityUnavailable
	}
	return string(s), nil
}

func validate(appID string, count int) error {
	if appID == "" {
		return ErrUnknownApp
	}
	if count < 0 {
		return ErrNegativeCount
	}
	return nil
}
