package badge

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

type listener struct {
	appID string
	fn    ChangeFunc
}

type notification struct {
	appID string
	count int
}

// dispatcher delivers change notifications to listeners on a single
// goroutine, in the order they were published.
type dispatcher struct {
	clock   clockz.Clock
	latency time.Duration

	mu        sync.Mutex
	pending   deque.Deque[notification]
	listeners map[uuid.UUID]listener
	closed    bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newDispatcher(clock clockz.Clock, latency time.Duration) *dispatcher {
	d := &dispatcher{
		clock:     clock,
		latency:   latency,
		listeners: make(map[uuid.UUID]listener),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) add(appID string, fn ChangeFunc) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	id := uuid.New()
	d.listeners[id] = listener{appID: appID, fn: fn}

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}, nil
}

func (d *dispatcher) publish(appID string, count int) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.pending.PushBack(notification{appID: appID, count: count})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer close(d.stopped)

	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		for {
			n, ok := d.next()
			if !ok {
				break
			}
			if !d.delay() {
				return
			}
			for _, fn := range d.listenersFor(n.appID) {
				fn(n.appID, n.count)
			}
		}
	}
}

func (d *dispatcher) next() (notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending.Len() == 0 {
		return notification{}, false
	}
	return d.pending.PopFront(), true
}

// delay waits for the configured latency. It returns false if the
// dispatcher was closed while waiting.
func (d *dispatcher) delay() bool {
	if d.latency <= 0 {
		return true
	}
	t := d.clock.NewTimer(d.latency)
	select {
	case <-t.C():
		return true
	case <-d.done:
		t.Stop()
		return false
	}
}

func (d *dispatcher) listenersFor(appID string) []ChangeFunc {
	d.mu.Lock()
	defer d.mu.Unlock()
	fns := make([]ChangeFunc, 0, len(d.listeners))
	for _, l := range d.listeners {
		if l.appID == appID {
			fns = append(fns, l.fn)
		}
	}
	return fns
}

func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.listeners = make(map[uuid.UUID]listener)
	d.mu.Unlock()

	close(d.done)
	<-d.stopped
}
