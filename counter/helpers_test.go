package counter

import (
	"context"
	"sync"
	"testing"
	"time"

	"BadgeCounter/badge"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/capitan"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

const testAppID = "org.example.test"

// fakeProvider records SetCount calls and confirms values only when the
// test says so.
type fakeProvider struct {
	mu        sync.Mutex
	appID     string
	count     int
	countErr  error
	setErr    error
	listenErr error
	sets      []int
	listeners map[int]badge.ChangeFunc
	nextID    int
}

func newFakeProvider(count int) *fakeProvider {
	return &fakeProvider{appID: testAppID, count: count, listeners: make(map[int]badge.ChangeFunc)}
}

func (p *fakeProvider) Count(_ context.Context, _ string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.countErr != nil {
		return 0, p.countErr
	}
	return p.count, nil
}

func (p *fakeProvider) SetCount(_ context.Context, _ string, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets = append(p.sets, count)
	return p.setErr
}

func (p *fakeProvider) AddChangeListener(_ string, fn badge.ChangeFunc) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listenErr != nil {
		return nil, p.listenErr
	}
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}, nil
}

// confirm stores count and notifies the listeners synchronously.
func (p *fakeProvider) confirm(count int) {
	p.mu.Lock()
	p.count = count
	appID := p.appID
	fns := make([]badge.ChangeFunc, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(appID, count)
	}
}

func (p *fakeProvider) Sets() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.sets...)
}

func (p *fakeProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

type slide struct {
	dir  Direction
	text string
}

// fakeView records what the controller asked it to show.
type fakeView struct {
	mu      sync.Mutex
	renders []string
	slides  []slide
	auto    []bool
	onSlide func()
}

func (v *fakeView) Render(text string) {
	v.mu.Lock()
	v.renders = append(v.renders, text)
	v.mu.Unlock()
}

func (v *fakeView) Slide(dir Direction, incoming string) {
	v.mu.Lock()
	v.slides = append(v.slides, slide{dir: dir, text: incoming})
	onSlide := v.onSlide
	v.mu.Unlock()

	if onSlide != nil {
		onSlide()
	}
}

func (v *fakeView) SetAutoIncrement(active bool) {
	v.mu.Lock()
	v.auto = append(v.auto, active)
	v.mu.Unlock()
}

func (v *fakeView) Renders() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.renders...)
}

func (v *fakeView) Slides() []slide {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]slide(nil), v.slides...)
}

func (v *fakeView) Auto() []bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]bool(nil), v.auto...)
}

// harness wires a Service and Controller around fakes. Messages are
// handled with Process on the test goroutine.
type harness struct {
	t        *testing.T
	ctx      context.Context
	provider *fakeProvider
	service  *Service
	view     *fakeView
	ctl      *Controller
}

func newHarness(t *testing.T, start int, opts ...ControllerOption) *harness {
	t.Helper()
	return newAppHarness(t, testAppID, start, opts...)
}

// newAppHarness is newHarness for a specific application ID, so that
// tests can tell their own signals apart on the shared capitan bus.
func newAppHarness(t *testing.T, appID string, start int, opts ...ControllerOption) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		provider: newFakeProvider(start),
		view:     &fakeView{},
	}
	h.provider.appID = appID
	h.service = NewService(h.provider, badge.StaticIdentity(appID), zaptest.NewLogger(t))
	h.service.Initialize(h.ctx)
	h.ctl = NewController(h.service, h.view, zaptest.NewLogger(t), opts...)
	h.service.SetObserver(h.ctl)

	t.Cleanup(func() {
		h.ctl.Close()
		h.service.Close()
	})
	return h
}

// drain handles every queued message.
func (h *harness) drain() {
	for h.ctl.Process(h.ctx) {
	}
}

// confirm lets the provider confirm count and handles the notification.
func (h *harness) confirm(count int) {
	h.provider.confirm(count)
	h.drain()
}

// finish reports the end of the running slide and handles it.
func (h *harness) finish() {
	h.ctl.AnimationFinished()
	h.drain()
}

type advancer interface {
	Advance(d time.Duration)
}

// tick advances the clock by d and waits until the controller handled the
// resulting timer tick.
func (h *harness) tick(clock advancer, d time.Duration) {
	h.t.Helper()
	go clock.Advance(d)
	require.Eventually(h.t, func() bool {
		return h.ctl.Process(h.ctx)
	}, time.Second, time.Millisecond)
}

// verifyNoLeaks returns a check for goroutines left behind by the test.
// capitan keeps its own delivery goroutines for the process lifetime, so
// every counter signal is emitted once before the baseline is taken.
func verifyNoLeaks(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()
	capitan.Emit(ctx, CountChanged)
	capitan.Emit(ctx, CountChangeFailed)
	capitan.Emit(ctx, AutoIncrementToggled)
	opts := []goleak.Option{goleak.IgnoreCurrent()}
	return func() {
		goleak.VerifyNone(t, opts...)
	}
}

// settled is a CountChanged event as seen by a hook.
type settled struct {
	count    int
	previous int
	display  string
}

// settleRecorder collects CountChanged events for one application.
type settleRecorder struct {
	mu     sync.Mutex
	events []settled
}

func recordSettles(appID string) *settleRecorder {
	r := &settleRecorder{}
	capitan.Hook(CountChanged, func(_ context.Context, e *capitan.Event) {
		if id, ok := KeyAppID.From(e); !ok || id != appID {
			return
		}
		count, _ := KeyCount.From(e)
		previous, _ := KeyPrevious.From(e)
		display, _ := KeyDisplay.From(e)

		r.mu.Lock()
		r.events = append(r.events, settled{count: count, previous: previous, display: display})
		r.mu.Unlock()
	})
	return r
}

func (r *settleRecorder) Events() []settled {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]settled(nil), r.events...)
}
