package transcription

import (
	"sync"
	"sync/atomic"

	"github.com/angangwa/azure-speech-to-text/core/events"
)

const sessionEventQueueCapacity = 64

// eventStream is the buffered channel behind [Session.Events]. A stalled
// consumer costs dropped events, never a blocked session: non-terminal
// events are discarded when the buffer is full, while the terminal event
// evicts queued ones until it fits so termination is always observable.
type eventStream struct {
	mu      sync.Mutex
	ch      chan events.Event
	closed  bool
	dropped atomic.Uint64
}

func newEventStream() *eventStream {
	return &eventStream{ch: make(chan events.Event, sessionEventQueueCapacity)}
}

// Emit queues a non-terminal event. Returns false when the event was
// dropped, either because the buffer is full or the stream already closed.
// Delivered events keep their emission order.
func (s *eventStream) Emit(event events.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// CloseWith delivers the terminal event and closes the channel. Later
// Emit and CloseWith calls are no-ops.
func (s *eventStream) CloseWith(event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for {
		select {
		case s.ch <- event:
			close(s.ch)
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *eventStream) Events() <-chan events.Event {
	return s.ch
}

// Dropped reports how many events were discarded because the consumer
// fell behind.
func (s *eventStream) Dropped() uint64 {
	return s.dropped.Load()
}
