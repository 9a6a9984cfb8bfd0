package counter

import (
	"sync"

	"github.com/gammazero/deque"
)

type messageKind int

const (
	msgTrigger messageKind = iota
	msgToggleAuto
	msgChanged
	msgFailed
	msgAnimationFinished
	msgSync
)

type message struct {
	kind    messageKind
	trigger Trigger
	count   int
	err     error
}

// mailbox is an unbounded FIFO of controller messages. post never blocks,
// so the Service may notify the controller from inside a handler.
type mailbox struct {
	mu    sync.Mutex
	queue deque.Deque[message]
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (m *mailbox) post(msg message) {
	m.mu.Lock()
	m.queue.PushBack(msg)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue.Len() == 0 {
		return message{}, false
	}
	return m.queue.PopFront(), true
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}
