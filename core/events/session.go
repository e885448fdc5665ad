package events

import (
	"fmt"
	"time"
)

const (
	// KindStatus identifies informational session progress updates.
	KindStatus Kind = "session.status"
	// KindError identifies recoverable and terminal session errors.
	KindError Kind = "session.error"
	// KindSessionEnded identifies the single terminal event of a session.
	KindSessionEnded Kind = "session.ended"
)

// Status carries an informational progress message. TimeRemaining is
// non-nil on deadline progress ticks and on statuses emitted while the
// session deadline is armed.
type Status struct {
	Base
	Message       string
	TimeRemaining *time.Duration
}

func (e Status) String() string {
	return e.Message
}

type StatusOption func(*Status)

// WithTimeRemaining attaches the time left before the session deadline.
func WithTimeRemaining(d time.Duration) StatusOption {
	return func(s *Status) {
		s.TimeRemaining = &d
	}
}

// NewStatus creates an informational progress event.
func NewStatus(message string, opts ...StatusOption) Status {
	status := Status{Base: NewBase(KindStatus), Message: message}
	for _, opt := range opts {
		opt(&status)
	}
	return status
}

// Error carries a session error surfaced through the event stream. Errors
// flow through the same channel as status updates so sinks have a single
// ingestion path.
type Error struct {
	Base
	Message string
}

func (e Error) String() string { return e.Message }

// NewError creates a session error event.
func NewError(message string) Error {
	return Error{Base: NewBase(KindError), Message: message}
}

// SessionEnded is the terminal event of a session. Exactly one is emitted
// per session, on every path, after which no further events follow.
type SessionEnded struct {
	Base
	Reason string
}

func (e SessionEnded) String() string {
	if e.Reason == "" {
		return "Transcription session ended"
	}
	return fmt.Sprintf("Transcription session ended (%s)", e.Reason)
}

// NewSessionEnded creates the terminal session event.
func NewSessionEnded(reason string) SessionEnded {
	return SessionEnded{Base: NewBase(KindSessionEnded), Reason: reason}
}
