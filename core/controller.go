// Package transcription turns a stream of microphone audio into a live
// transcript. A Controller owns at most one Session at a time; the session
// connects to the realtime transcription endpoint, feeds it captured
// audio and folds the returned deltas and completed utterances into a
// transcript while publishing everything observable on a single event
// stream.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/angangwa/azure-speech-to-text/core/events"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
	"github.com/angangwa/azure-speech-to-text/core/transcribe/realtime"
)

const defaultDrainTimeout = 2 * time.Second

var (
	// ErrAlreadyRunning is returned by Start while another session is live
	// on the same controller.
	ErrAlreadyRunning = errors.New("transcription session already running")
	// ErrNotRunning is returned by operations that require a live session.
	ErrNotRunning = errors.New("transcription session not running")
)

// Controller manages transcription sessions against a realtime endpoint.
// Controllers are independent instances; two controllers share nothing and
// can run side by side.
type Controller struct {
	mu     sync.Mutex
	active *Session

	// audioInput is the input facade used to normalize capture behavior.
	audioInput audioInput

	clientFactory ClientFactory
	drainTimeout  time.Duration
	eventHandler  func(events.Event)

	closeOnce sync.Once
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		clientFactory: defaultClientFactory,
		drainTimeout:  defaultDrainTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func defaultClientFactory(config transcribe.SessionConfig) (Client, error) {
	return realtime.NewClient(config)
}

// Start launches a transcription session and returns its handle
// immediately; connecting, streaming and teardown happen in the
// background. Failures after Start surface through the handle as a Failed
// status, an Error event and the terminal event. ctx cancellation ends
// the session the same way Stop does.
//
// Returns ErrAlreadyRunning while a previous session on this controller
// is still live.
func (c *Controller) Start(ctx context.Context, opts ...StartOption) (*Session, error) {
	options := StartOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	config := transcribe.DefaultSessionConfig()
	for _, opt := range options.sessionOptions {
		opt(&config)
	}
	// A configured source dictates the encoding of the bytes actually
	// captured, so it wins over any configured value.
	if c.audioInput.IsConfigured() {
		config.Encoding = c.audioInput.EncodingInfo()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session configuration: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && !c.active.terminated() {
		return nil, ErrAlreadyRunning
	}

	session := newSession(config, c, options)
	c.active = session
	go session.run(ctx)

	return session, nil
}

// Stop ends the active session and waits for it to reach its terminal
// event. Returns ErrNotRunning when no session is live.
func (c *Controller) Stop() error {
	if session := c.activeSession(); session != nil {
		return session.Stop()
	}

	return ErrNotRunning
}

// Status reports the lifecycle status of the most recent session, or an
// idle status before the first Start.
func (c *Controller) Status() Status {
	if session := c.activeSession(); session != nil {
		return session.Status()
	}

	return Status{Phase: PhaseIdle}
}

// Snapshot returns a point-in-time copy of the most recent session's
// transcript.
func (c *Controller) Snapshot() TranscriptSnapshot {
	if session := c.activeSession(); session != nil {
		return session.Snapshot()
	}

	return TranscriptSnapshot{}
}

// Session returns the most recently started session, nil before the first
// Start.
func (c *Controller) Session() *Session {
	return c.activeSession()
}

func (c *Controller) activeSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close stops the active session, if any, and releases the audio source.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if session := c.activeSession(); session != nil {
			if err := session.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
				log.Printf("Failed to stop session on close: %v", err)
			}
		}

		if err := c.audioInput.Close(); err != nil {
			log.Printf("Failed to close audio input: %v", err)
		}
	})
}
