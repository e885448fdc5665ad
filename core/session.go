package transcription

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/angangwa/azure-speech-to-text/core/events"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

// Phase tracks where a session is in its lifecycle. Phases only move
// forward; every session ends in Completed or Failed.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseStreaming
	PhaseStopping
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseStreaming:
		return "streaming"
	case PhaseStopping:
		return "stopping"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// IsTerminal reports whether the phase is final.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Status is a point-in-time view of a session's lifecycle. Reason is set
// once the session is terminal.
type Status struct {
	Phase  Phase
	Reason string
}

// Session is one transcription run from connect to terminal event. It is
// created by [Controller.Start] and observed through its event stream,
// status and transcript snapshots.
type Session struct {
	id     string
	config transcribe.SessionConfig

	clientFactory ClientFactory
	audioInput    *audioInput
	drainTimeout  time.Duration

	transcript *transcript
	stream     *eventStream
	emitter    eventEmitter
	observer   func(events.Event)

	phase atomic.Int32

	mu       sync.Mutex
	client   Client
	reason   string
	err      error
	deadline time.Time

	stopping      atomic.Bool
	stopRequested chan struct{}

	finishOnce sync.Once
	done       chan struct{}
}

func newSession(config transcribe.SessionConfig, controller *Controller, opts StartOptions) *Session {
	observer := controller.eventHandler
	if observer == nil {
		observer = noopEventEmitter
	}

	return &Session{
		id:            uuid.NewString(),
		config:        config,
		clientFactory: controller.clientFactory,
		audioInput:    &controller.audioInput,
		drainTimeout:  controller.drainTimeout,
		transcript:    newTranscript(),
		stream:        newEventStream(),
		emitter:       newCallbackEventEmitter(opts),
		observer:      observer,
		stopRequested: make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Config returns the configuration the session was started with.
func (s *Session) Config() transcribe.SessionConfig { return s.config }

// Events returns the session's event stream: transcript deltas, completed
// turns, status updates and errors in emission order, ending with the
// terminal event after which the channel is closed. A consumer that falls
// behind loses intermediate events (counted, never reordered) but always
// observes the terminal event and the close.
func (s *Session) Events() <-chan events.Event {
	return s.stream.Events()
}

// Snapshot returns a point-in-time copy of the transcript, safe to call
// concurrently with the live session.
func (s *Session) Snapshot() TranscriptSnapshot {
	return s.transcript.Snapshot()
}

// Status reports the current lifecycle phase and, once terminal, the
// reason the session ended.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Phase: s.currentPhase(), Reason: s.reason}
}

// Stop ends the session cooperatively: in-flight audio is flushed, the
// connection drained within the drain timeout, and the terminal event
// emitted. The first call blocks until the session is fully terminated
// and returns nil; later calls, or a stop after the session already
// ended, return ErrNotRunning without side effects.
func (s *Session) Stop() error {
	select {
	case <-s.done:
		return ErrNotRunning
	default:
	}

	if !s.stopping.CompareAndSwap(false, true) {
		return ErrNotRunning
	}

	close(s.stopRequested)
	<-s.done
	return nil
}

// SendAudio forwards one audio frame to the live transcription transport,
// complementing or replacing a configured audio source. Returns
// ErrNotRunning before the session has connected and after it ended.
func (s *Session) SendAudio(audio []byte) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil || s.terminated() {
		return ErrNotRunning
	}
	return client.SendAudio(audio)
}

// Done is closed once the session has reached a terminal phase.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session failed. It is nil while the session is live
// and after any non-failure ending.
func (s *Session) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DroppedEvents reports how many events were discarded because the event
// stream's consumer fell behind.
func (s *Session) DroppedEvents() uint64 {
	return s.stream.Dropped()
}

func (s *Session) currentPhase() Phase {
	return Phase(s.phase.Load())
}

func (s *Session) terminated() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) setClient(client Client) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}
