package counter

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// DefaultAutoIncrementInterval is the period of the auto-increment timer.
const DefaultAutoIncrementInterval = 1500 * time.Millisecond

// Counter is the part of the Service the Controller drives.
type Counter interface {
	Increment(ctx context.Context)
	Decrement(ctx context.Context)
	Reset(ctx context.Context)
	CurrentCount() int
	AppID() string
}

// View is the presentation side of the counter.
type View interface {
	// Render shows text in the static counter element.
	Render(text string)

	// Slide starts the transition animation with incoming pre-rendered in
	// the element sliding in. The view must call
	// Controller.AnimationFinished exactly once when it ends.
	//
	// View methods are called from the handler goroutine without any
	// Controller lock held, so they may call Snapshot.
	Slide(dir Direction, incoming string)

	// SetAutoIncrement shows whether auto-increment is active.
	SetAutoIncrement(active bool)
}

// Snapshot is a consistent copy of the Controller state.
type Snapshot struct {
	State         State
	Animating     bool
	Direction     Direction
	Displayed     int
	Target        int
	AutoIncrement bool
}

// Controller serializes count changes: at most one change is requested or
// animating at any time, and triggers arriving meanwhile are dropped.
//
// All inbound events go through a FIFO mailbox and are handled by the
// goroutine running Run (or by the caller of Process), one at a time.
type Controller struct {
	counter  Counter
	view     View
	log      *zap.Logger
	clock    clockz.Clock
	interval time.Duration

	box *mailbox

	// Owned by the handler goroutine (Run, or the caller of Process).
	busy      bool
	animating bool
	direction Direction
	displayed int
	target    int
	stale     bool
	auto      clockz.Timer

	// mu guards snap, the copy of the state above published after every
	// handled message.
	mu   sync.RWMutex
	snap Snapshot
}

type controllerConfig struct {
	clock    clockz.Clock
	interval time.Duration
}

// ControllerOption configures a Controller.
type ControllerOption func(*controllerConfig)

// WithClock sets the clock driving the auto-increment timer.
// Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) ControllerOption {
	return func(c *controllerConfig) {
		c.clock = clock
	}
}

// WithAutoIncrementInterval sets the auto-increment period.
func WithAutoIncrementInterval(d time.Duration) ControllerOption {
	return func(c *controllerConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// NewController creates a Controller and renders the counter's current
// value as the initial baseline.
func NewController(counter Counter, view View, log *zap.Logger, opts ...ControllerOption) *Controller {
	cfg := &controllerConfig{
		clock:    clockz.RealClock,
		interval: DefaultAutoIncrementInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Controller{
		counter:   counter,
		view:      view,
		log:       log,
		clock:     cfg.clock,
		interval:  cfg.interval,
		box:       newMailbox(),
		displayed: counter.CurrentCount(),
	}
	c.target = c.displayed
	c.publish()
	view.Render(Format(c.displayed))
	return c
}

// Trigger posts a change request.
func (c *Controller) Trigger(t Trigger) {
	c.box.post(message{kind: msgTrigger, trigger: t})
}

// Increment posts an increment request.
func (c *Controller) Increment() { c.Trigger(TriggerIncrement) }

// Decrement posts a decrement request.
func (c *Controller) Decrement() { c.Trigger(TriggerDecrement) }

// Reset posts a reset request.
func (c *Controller) Reset() { c.Trigger(TriggerReset) }

// ToggleAutoIncrement starts the auto-increment timer if it is stopped and
// stops it otherwise.
func (c *Controller) ToggleAutoIncrement() {
	c.box.post(message{kind: msgToggleAuto})
}

// Sync re-reads the counter and animates to it when it moved while
// nobody was listening, e.g. between NewController and the observer
// registration. It does nothing while a change is in progress, since
// settling re-reads the count anyway.
func (c *Controller) Sync() {
	c.box.post(message{kind: msgSync})
}

// AnimationFinished reports the end of the slide started by View.Slide.
func (c *Controller) AnimationFinished() {
	c.box.post(message{kind: msgAnimationFinished})
}

// CountChanged implements Observer.
func (c *Controller) CountChanged(_ context.Context, count int) {
	c.box.post(message{kind: msgChanged, count: count})
}

// CountChangeFailed implements Observer.
func (c *Controller) CountChangeFailed(_ context.Context, err error) {
	c.box.post(message{kind: msgFailed, err: err})
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// publish copies the handler-owned state for Snapshot.
func (c *Controller) publish() {
	s := Snapshot{
		State:         StateIdle,
		Animating:     c.animating,
		Direction:     c.direction,
		Displayed:     c.displayed,
		Target:        c.target,
		AutoIncrement: c.auto != nil,
	}
	if c.busy {
		s.State = StateBusy
	}

	c.mu.Lock()
	c.snap = s
	c.mu.Unlock()
}

// Pending returns the number of queued, unhandled messages.
func (c *Controller) Pending() int {
	return c.box.len()
}

// Run handles messages and timer ticks until ctx is cancelled. The
// auto-increment timer is stopped on return.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stopAutoIncrement()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.box.ready:
			for c.processMessage(ctx) {
			}
		case <-c.tickC():
			c.handleTick(ctx)
		}
	}
}

// Process handles one pending message, or one due timer tick, without
// blocking. It returns false if there was nothing to do. Process must not
// be used while Run is active.
func (c *Controller) Process(ctx context.Context) bool {
	if c.processMessage(ctx) {
		return true
	}
	select {
	case <-c.tickC():
		c.handleTick(ctx)
		return true
	default:
		return false
	}
}

// Close stops the auto-increment timer. Use it when driving the
// Controller through Process, from the same goroutine; Run does this
// itself.
func (c *Controller) Close() {
	c.stopAutoIncrement()
}

func (c *Controller) processMessage(ctx context.Context) bool {
	msg, ok := c.box.pop()
	if !ok {
		return false
	}

	defer c.publish()

	switch msg.kind {
	case msgTrigger:
		c.handleTrigger(ctx, msg.trigger)
	case msgToggleAuto:
		c.handleToggle(ctx)
	case msgChanged:
		c.handleChanged(ctx, msg.count)
	case msgFailed:
		c.handleFailed(msg.err)
	case msgAnimationFinished:
		c.handleAnimationFinished(ctx)
	case msgSync:
		c.handleSync(ctx)
	}
	return true
}

func (c *Controller) handleTrigger(ctx context.Context, t Trigger) {
	if c.busy {
		c.log.Debug("change in progress, dropping trigger", zap.Stringer("trigger", t))
		return
	}
	c.busy = true

	switch t {
	case TriggerIncrement:
		c.counter.Increment(ctx)
	case TriggerDecrement:
		c.counter.Decrement(ctx)
	case TriggerReset:
		c.counter.Reset(ctx)
	}
}

func (c *Controller) handleFailed(err error) {
	if !c.busy || c.animating {
		c.log.Debug("ignoring change error outside a request", zap.Error(err))
		return
	}
	c.busy = false
	c.log.Debug("change rejected, lock released", zap.Error(err))
}

func (c *Controller) handleChanged(ctx context.Context, confirmed int) {
	if c.animating {
		// Settle re-reads the count, so the newer value is shown after
		// the running slide instead of on top of it.
		c.stale = true
		return
	}

	oldValue := c.displayed
	newValue := c.counter.CurrentCount()
	c.log.Debug("badge value changed",
		zap.Int("old", oldValue), zap.Int("new", newValue), zap.Int("confirmed", confirmed))

	if oldValue == newValue {
		c.busy = false
		return
	}

	if Overflows(oldValue) && Overflows(newValue) {
		c.displayed = newValue
		c.target = newValue
		c.busy = false
		c.emitSettled(ctx, oldValue, newValue)
		return
	}

	c.busy = true
	c.animating = true
	c.target = newValue
	if newValue > oldValue {
		c.direction = DirectionRight
	} else {
		c.direction = DirectionLeft
	}
	c.view.Slide(c.direction, Format(newValue))
}

func (c *Controller) handleAnimationFinished(ctx context.Context) {
	if !c.animating {
		c.log.Debug("ignoring animation end without a running slide")
		return
	}

	oldValue := c.displayed
	c.animating = false
	c.direction = DirectionNone
	c.displayed = c.target
	c.view.Render(Format(c.displayed))
	c.busy = false
	c.emitSettled(ctx, oldValue, c.displayed)

	if c.stale {
		c.stale = false
		c.handleChanged(ctx, c.counter.CurrentCount())
	}
}

func (c *Controller) handleSync(ctx context.Context) {
	if c.busy || c.animating {
		return
	}
	if current := c.counter.CurrentCount(); current != c.displayed {
		c.handleChanged(ctx, current)
	}
}

func (c *Controller) handleToggle(ctx context.Context) {
	active := c.auto == nil
	if c.auto != nil {
		c.auto.Stop()
		c.auto = nil
	} else {
		c.auto = c.clock.NewTimer(c.interval)
	}
	c.view.SetAutoIncrement(active)

	state := "off"
	if active {
		state = "on"
	}
	c.log.Debug("auto-increment toggled", zap.String("state", state))
	capitan.Emit(ctx, AutoIncrementToggled,
		KeyActive.Field(state),
	)
}

func (c *Controller) handleTick(ctx context.Context) {
	defer c.publish()

	if c.auto == nil {
		return
	}
	c.auto = c.clock.NewTimer(c.interval)
	c.handleTrigger(ctx, TriggerIncrement)
}

// tickC returns the auto-increment timer channel, or nil when the timer is
// stopped so that a select on it blocks forever.
func (c *Controller) tickC() <-chan time.Time {
	if c.auto == nil {
		return nil
	}
	return c.auto.C()
}

func (c *Controller) stopAutoIncrement() {
	if c.auto != nil {
		c.auto.Stop()
		c.auto = nil
		c.publish()
	}
}

func (c *Controller) emitSettled(ctx context.Context, previous, count int) {
	capitan.Emit(ctx, CountChanged,
		KeyAppID.Field(c.counter.AppID()),
		KeyCount.Field(count),
		KeyPrevious.Field(previous),
		KeyDisplay.Field(Format(count)),
	)
}
