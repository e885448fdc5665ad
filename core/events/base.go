package events

import "time"

type Kind string

// Event is implemented by every event emitted during a transcription
// session. String renders the event the way a sink would display it.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
	String() string
}

// Base carries the kind and creation timestamp shared by all events.
// Timestamps use the runtime's monotonic clock, so events created on a
// single goroutine (the receive path) are non-decreasing.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
