package transcription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angangwa/azure-speech-to-text/core/events"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

// run drives the session from connect to terminal event. Every exit path
// funnels through finish, so the terminal event is emitted exactly once
// and Done is always closed.
func (s *Session) run(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "transcription session")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.provider", string(s.config.Provider)),
		attribute.String("session.model", s.config.Model),
	)

	defer func() {
		if recovered := recover(); recovered != nil {
			s.fail(span, fmt.Errorf("session runner panicked: %v", recovered))
		}
	}()

	s.emitStatus(fmt.Sprintf("Starting transcription for %d seconds", int(s.config.MaxDuration.Seconds())))

	client, err := s.clientFactory(s.config)
	if err != nil {
		s.fail(span, fmt.Errorf("failed to build transcription client: %w", err))
		return
	}
	s.setClient(client)
	defer client.Close()
	s.registerHandlers(client)

	s.phase.Store(int32(PhaseConnecting))
	if err := s.dial(ctx, client); err != nil {
		// Cancellation is control flow, not a connection failure. A stop
		// issued mid-dial wins over the caller's context.
		switch {
		case s.stopping.Load():
			s.finish(PhaseCompleted, "stopped", nil)
		case ctx.Err() != nil:
			s.finish(PhaseCompleted, "cancelled", nil)
		default:
			s.fail(span, err)
		}
		return
	}
	s.emitStatus("WebSocket connection established")
	s.emitStatus("Session configuration sent")

	s.mu.Lock()
	s.deadline = time.Now().Add(s.config.MaxDuration)
	deadline := s.deadline
	s.mu.Unlock()
	s.phase.Store(int32(PhaseStreaming))
	span.AddEvent("streaming started")

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()

	feedFailed := make(chan error, 1)
	wg := &sync.WaitGroup{}
	if s.audioInput.IsConfigured() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := panicSafeNamedWorker("audio feed", func(ctx context.Context) error {
				return s.audioInput.Stream(ctx, s.feedFrame)
			})(feedCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				feedFailed <- err
			}
		}()
	}

	deadlineTimer := time.NewTimer(time.Until(deadline))
	defer deadlineTimer.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var reason string
	var sessionErr error
	for reason == "" && sessionErr == nil {
		select {
		case <-ticker.C:
			s.emitTick(deadline)
		case <-deadlineTimer.C:
			reason = "time limit"
		case <-s.stopRequested:
			reason = "stopped"
		case <-ctx.Done():
			reason = "cancelled"
		case err := <-feedFailed:
			sessionErr = err
		case <-client.Done():
			if err := client.Err(); err != nil {
				sessionErr = err
			} else {
				s.emitStatus("Connection closed")
				reason = "connection closed"
			}
		}
	}

	s.phase.Store(int32(PhaseStopping))
	stopFeed()
	wg.Wait()

	if sessionErr != nil {
		s.fail(span, sessionErr)
		return
	}

	// The session context may already be cancelled here; draining gets its
	// own deadline so the grace window survives cancellation.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	if err := client.Drain(drainCtx); err != nil {
		span.RecordError(err)
		log.Printf("Transcription connection did not drain cleanly: %v", err)
		client.Close()
	}

	s.emitStatus("Message receiving complete")
	s.finish(PhaseCompleted, reason, nil)
}

// dial connects the transport under a context that is additionally
// cancelled when Stop is called, so a stalled dial cannot block a stop
// request for the length of the handshake timeout.
func (s *Session) dial(ctx context.Context, client Client) error {
	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	connected := make(chan struct{})
	defer close(connected)
	go func() {
		select {
		case <-s.stopRequested:
			cancel()
		case <-connected:
		}
	}()

	return client.Connect(dialCtx)
}

// registerHandlers wires the protocol dispatch table. Handlers run on the
// transport's receive goroutine, so transcript mutation is single-threaded
// and events keep the arrival order of the underlying messages.
func (s *Session) registerHandlers(client Client) {
	client.RegisterHandler(transcribe.TypeTranscriptDelta, func(msg transcribe.Message) {
		delta := msg.Delta()
		s.transcript.applyDelta(delta)
		s.emitEvent(events.NewTranscriptDelta(delta))
	})
	client.RegisterHandler(transcribe.TypeTranscriptCompleted, func(msg transcribe.Message) {
		turn, ok := s.transcript.completeTurn(msg.Transcript())
		if !ok {
			return
		}
		s.emitEvent(events.NewTranscriptCompleted(turn.Text, turn.Sequence))
	})
	client.RegisterHandler(transcribe.TypeSpeechStarted, func(transcribe.Message) {
		s.emitStatus("Speech detected, listening...")
	})
	client.RegisterHandler(transcribe.TypeSpeechStopped, func(transcribe.Message) {
		s.emitStatus("Speech stopped")
	})
	client.RegisterHandler(transcribe.TypeError, func(msg transcribe.Message) {
		s.emitEvent(events.NewError(msg.ErrorMessage()))
	})
	client.RegisterDefaultHandler(func(msg transcribe.Message) {
		s.emitStatus(msg.Type)
	})
}

// feedFrame forwards one captured frame to the transport. Send errors are
// ignored; during shutdown they are expected, and mid-stream the transport
// counts its own drops.
func (s *Session) feedFrame(audio []byte) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return
	}
	client.SendAudio(audio)
}

func (s *Session) emitTick(deadline time.Time) {
	remaining := time.Until(deadline).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	s.emitEvent(events.NewStatus(
		fmt.Sprintf("Recording in progress. Time remaining: %d seconds", int(remaining.Seconds())),
		events.WithTimeRemaining(remaining),
	))
}

// emitStatus publishes an informational status update, with the time left
// attached while the deadline is armed.
func (s *Session) emitStatus(message string) {
	s.mu.Lock()
	deadline := s.deadline
	s.mu.Unlock()

	if deadline.IsZero() || s.currentPhase().IsTerminal() {
		s.emitEvent(events.NewStatus(message))
		return
	}

	remaining := time.Until(deadline).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	s.emitEvent(events.NewStatus(message, events.WithTimeRemaining(remaining)))
}

// emitEvent delivers one non-terminal event to the controller observer,
// the per-session callbacks and the event stream.
func (s *Session) emitEvent(event events.Event) {
	s.observe(event)
	s.stream.Emit(event)
}

func (s *Session) observe(event events.Event) {
	s.observer(event)
	s.emitter(event)
}

func (s *Session) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.emitEvent(events.NewError(err.Error()))
	s.finish(PhaseFailed, err.Error(), err)
}

// finish records the terminal state and emits the terminal event, after
// which the event stream is closed. Only the first call wins.
func (s *Session) finish(phase Phase, reason string, err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.err = err
		s.mu.Unlock()
		s.phase.Store(int32(phase))

		event := events.NewSessionEnded(reason)
		s.observe(event)
		s.stream.CloseWith(event)
		close(s.done)

		if dropped := s.stream.Dropped(); dropped > 0 {
			log.Printf("Dropped %d session events on a stalled consumer", dropped)
		}
	})
}
