package badge

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// MemoryProvider is an in-process badge store. Every accepted SetCount is
// confirmed to the listeners from a background goroutine, even when the
// value did not change.
type MemoryProvider struct {
	mu     sync.Mutex
	counts map[string]int
	closed bool

	disp *dispatcher
}

type memoryConfig struct {
	counts  map[string]int
	latency time.Duration
	clock   clockz.Clock
}

// MemoryOption configures a MemoryProvider.
type MemoryOption func(*memoryConfig)

// WithCount seeds the store with a badge value for appID.
func WithCount(appID string, count int) MemoryOption {
	return func(c *memoryConfig) {
		c.counts[appID] = count
	}
}

// WithLatency delays every change confirmation by d.
func WithLatency(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.latency = d
	}
}

// WithClock sets the clock used for the confirmation latency.
func WithClock(clock clockz.Clock) MemoryOption {
	return func(c *memoryConfig) {
		c.clock = clock
	}
}

// NewMemoryProvider creates an empty in-process store.
func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	cfg := &memoryConfig{
		counts: make(map[string]int),
		clock:  clockz.RealClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryProvider{
		counts: cfg.counts,
		disp:   newDispatcher(cfg.clock, cfg.latency),
	}
}

// Count returns the stored value for appID, zero if none was set.
func (p *MemoryProvider) Count(_ context.Context, appID string) (int, error) {
	if appID == "" {
		return 0, ErrUnknownApp
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	return p.counts[appID], nil
}

// SetCount stores count and schedules the change notification.
func (p *MemoryProvider) SetCount(ctx context.Context, appID string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(appID, count); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.counts[appID] = count
	p.disp.publish(appID, count)
	p.mu.Unlock()
	return nil
}

// AddChangeListener registers fn for appID's badge changes.
func (p *MemoryProvider) AddChangeListener(appID string, fn ChangeFunc) (func(), error) {
	if appID == "" {
		return nil, ErrUnknownApp
	}
	return p.disp.add(appID, fn)
}

// Close stops notification delivery. Pending notifications are dropped.
func (p *MemoryProvider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.disp.close()
	return nil
}
