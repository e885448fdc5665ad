package transcription

import (
	"context"
	"time"

	"github.com/angangwa/azure-speech-to-text/core/audio"
	"github.com/angangwa/azure-speech-to-text/core/events"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
	"github.com/angangwa/azure-speech-to-text/core/transcribe/realtime"
)

type ControllerOption func(*Controller)

// Client is the transport a session speaks the transcription protocol over.
// The realtime websocket client is the production implementation.
type Client interface {
	RegisterHandler(messageType string, handler transcribe.Handler)
	RegisterDefaultHandler(handler transcribe.Handler)
	Connect(ctx context.Context) error
	SendAudio(audio []byte) error
	Drain(ctx context.Context) error
	Close() error
	Done() <-chan struct{}
	Err() error
}

// ClientFactory builds a fresh transport for each session.
type ClientFactory func(config transcribe.SessionConfig) (Client, error)

func WithClientFactory(factory ClientFactory) ControllerOption {
	return func(c *Controller) {
		if factory == nil {
			return
		}
		c.clientFactory = factory
	}
}

// WithCredentials pins endpoint credentials for the default websocket
// client. Without it credentials are resolved from the environment at
// connect time.
func WithCredentials(creds realtime.Credentials) ControllerOption {
	return func(c *Controller) {
		c.clientFactory = func(config transcribe.SessionConfig) (Client, error) {
			return realtime.NewClient(config, realtime.WithCredentials(creds))
		}
	}
}

type AudioSource interface {
	audioSourceBase
}

type AudioSourceFine interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioSource(client AudioSource) ControllerOption {
	return func(c *Controller) { c.audioInput.Set(client) }
}

// WithDrainTimeout bounds how long an ending session waits for the server
// to deliver its remaining events before the connection is forced closed.
func WithDrainTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		if timeout > 0 {
			c.drainTimeout = timeout
		}
	}
}

// WithEventHandler registers an observer that receives every event from
// every session started on this controller, ahead of per-session
// callbacks. It runs inline on the event path and should not block.
func WithEventHandler(handler func(event events.Event)) ControllerOption {
	return func(c *Controller) { c.eventHandler = handler }
}

type StartOptions struct {
	sessionOptions []transcribe.SessionOption

	onEvent                func(event events.Event)
	onTranscription        func(transcript string)
	onPartialTranscription func(transcript string)
	onStatus               func(status string)
	onError                func(err error)
	onSessionEnded         func(reason string)
}

type StartOption func(*StartOptions)

// WithSessionOptions adjusts the session configuration for this session
// only, applied on top of the controller defaults.
func WithSessionOptions(opts ...transcribe.SessionOption) StartOption {
	return func(o *StartOptions) {
		o.sessionOptions = append(o.sessionOptions, opts...)
	}
}

// WithEventCallback registers a callback for every event the session
// emits, in emission order. It runs inline on the event path and should
// not block.
func WithEventCallback(callback func(event events.Event)) StartOption {
	return func(o *StartOptions) {
		o.onEvent = callback
	}
}

// WithTranscriptionCallback registers a callback for completed turns.
func WithTranscriptionCallback(callback func(transcript string)) StartOption {
	return func(o *StartOptions) {
		o.onTranscription = callback
	}
}

// WithPartialTranscriptionCallback registers a callback for incremental
// deltas of the turn in progress.
func WithPartialTranscriptionCallback(callback func(transcript string)) StartOption {
	return func(o *StartOptions) {
		o.onPartialTranscription = callback
	}
}

func WithStatusCallback(callback func(status string)) StartOption {
	return func(o *StartOptions) {
		o.onStatus = callback
	}
}

func WithErrorCallback(callback func(err error)) StartOption {
	return func(o *StartOptions) {
		o.onError = callback
	}
}

// WithSessionEndedCallback registers a callback invoked once the session
// reaches a terminal phase, with the reason it ended.
func WithSessionEndedCallback(callback func(reason string)) StartOption {
	return func(o *StartOptions) {
		o.onSessionEnded = callback
	}
}

type audioSourceBase interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}
