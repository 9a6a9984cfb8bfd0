// Package counter contains the badge counter domain logic: the display
// Formatter, the Service owning the authoritative count, and the Controller
// state machine that serializes changes and their slide animations.
//
// Maintenance notes:
//   - The Service never updates its count from a request. The count only
//     moves when the provider confirms a value through the change listener,
//     so whatever is displayed was acknowledged by the platform.
//   - Every request produces one Observer notification: CountChangeFailed
//     synchronously for rejected values or provider errors, CountChanged
//     later from the provider's listener.
package counter

import (
	"context"
	"fmt"
	"sync"

	"BadgeCounter/badge"

	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
)

// Observer receives the Service's change notifications.
type Observer interface {
	CountChanged(ctx context.Context, count int)
	CountChangeFailed(ctx context.Context, err error)
}

// Service owns the badge count and forwards change requests to the
// badge provider.
type Service struct {
	provider badge.Provider
	identity badge.Identity
	log      *zap.Logger

	mu       sync.RWMutex
	appID    string
	count    int
	degraded bool
	observer Observer
	remove   func()
}

// NewService creates a Service. Call Initialize before requesting changes.
func NewService(provider badge.Provider, identity badge.Identity, log *zap.Logger) *Service {
	return &Service{
		provider: provider,
		identity: identity,
		log:      log,
	}
}

// SetObserver registers the receiver of change notifications. Changes
// confirmed while no observer is set only update the count.
func (s *Service) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// Initialize resolves the application ID, reads the current badge value
// and registers for change notifications. Failures are logged and leave
// the service in a degraded state; they are never returned.
func (s *Service) Initialize(ctx context.Context) {
	appID, err := s.identity.CurrentApplicationID()
	if err != nil {
		s.log.Error("failed to resolve application id", zap.Error(err))
		s.mu.Lock()
		s.degraded = true
		s.mu.Unlock()
		return
	}

	count, err := s.provider.Count(ctx, appID)
	if err != nil {
		s.log.Error("failed to read badge count", zap.String("app_id", appID), zap.Error(err))
		count = 0
	}

	s.mu.Lock()
	s.appID = appID
	s.count = count
	s.mu.Unlock()

	remove, err := s.provider.AddChangeListener(appID, s.onBadgeChange)
	if err != nil {
		s.log.Error("failed to register badge change listener", zap.String("app_id", appID), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.remove = remove
	s.mu.Unlock()

	s.log.Info("badge counter initialized", zap.String("app_id", appID), zap.Int("count", count))
}

// Close unregisters the change listener.
func (s *Service) Close() {
	s.mu.Lock()
	remove := s.remove
	s.remove = nil
	s.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Degraded reports whether the application identity could not be resolved.
func (s *Service) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// AppID returns the resolved application ID.
func (s *Service) AppID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appID
}

// CurrentCount returns the last value confirmed by the provider.
func (s *Service) CurrentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Increment requests the current count plus one.
func (s *Service) Increment(ctx context.Context) {
	s.requestChange(ctx, s.CurrentCount()+1)
}

// Decrement requests the current count minus one.
func (s *Service) Decrement(ctx context.Context) {
	s.requestChange(ctx, s.CurrentCount()-1)
}

// Reset requests zero.
func (s *Service) Reset(ctx context.Context) {
	s.requestChange(ctx, 0)
}

func (s *Service) requestChange(ctx context.Context, value int) {
	if value < 0 {
		s.fail(ctx, fmt.Errorf("requested %d: %w", value, ErrInvalidValue))
		return
	}

	s.mu.RLock()
	appID, degraded := s.appID, s.degraded
	s.mu.RUnlock()

	if degraded {
		s.fail(ctx, fmt.Errorf("%w: %w", ErrProviderFailure, badge.ErrIdentityUnavailable))
		return
	}

	if err := s.provider.SetCount(ctx, appID, value); err != nil {
		s.log.Error("setBadgeCount failed", zap.Int("value", value), zap.Error(err))
		s.fail(ctx, fmt.Errorf("%w: %w", ErrProviderFailure, err))
	}
}

// onBadgeChange is the provider's confirmation path.
func (s *Service) onBadgeChange(appID string, count int) {
	s.mu.Lock()
	if appID != s.appID {
		s.mu.Unlock()
		return
	}
	s.count = count
	o := s.observer
	s.mu.Unlock()

	s.log.Debug("badge count confirmed", zap.Int("count", count))
	if o != nil {
		o.CountChanged(context.Background(), count)
	}
}

func (s *Service) fail(ctx context.Context, err error) {
	s.mu.RLock()
	o := s.observer
	s.mu.RUnlock()

	s.log.Debug("badge count change rejected", zap.Error(err))
	capitan.Emit(ctx, CountChangeFailed,
		KeyError.Field(err.Error()),
	)
	if o != nil {
		o.CountChangeFailed(ctx, err)
	}
}
