// Package realtime implements the websocket transcription protocol spoken
// by the Azure OpenAI and OpenAI realtime endpoints: one connection per
// session, a configuration frame up front, base64 audio appends going out
// and transcription events coming back until the connection drains.
package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

// State tracks where a client is in its lifecycle. Transitions only move
// forward; every path ends in StateClosed.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConfigured
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConfigured:
		return "configured"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Client is a single-use transcription session over one websocket. Connect
// starts it, SendAudio feeds it, Drain or Close ends it; a fresh Client is
// needed for the next session.
type Client struct {
	config transcribe.SessionConfig
	creds  Credentials

	conn   *websocket.Conn
	connMu sync.Mutex

	state atomic.Int32

	sendQueue     chan []byte
	droppedFrames atomic.Uint64

	drainRequested chan struct{}
	drainOnce      sync.Once

	done       chan struct{}
	finishOnce sync.Once
	closeErr   error

	handlersMu      sync.RWMutex
	handlers        map[string][]transcribe.Handler
	defaultHandlers []transcribe.Handler
}

// NewClient prepares a client for the given session configuration. The
// websocket is not dialed until Connect.
func NewClient(config transcribe.SessionConfig, opts ...ClientOption) (*Client, error) {
	client := &Client{
		config:         config,
		sendQueue:      make(chan []byte, defaultQueueSize),
		drainRequested: make(chan struct{}),
		done:           make(chan struct{}),
		handlers:       map[string][]transcribe.Handler{},
	}
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Connect resolves credentials, dials the endpoint and sends the session
// configuration frame. On success the send and receive loops are running
// and the client accepts audio; on failure the client is closed and the
// returned error wraps one of ErrAuthRejected, ErrInvalidEndpoint or
// ErrNetworkUnreachable.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "transcription.connect")
	defer span.End()
	span.SetAttributes(
		attribute.String("transcription.provider", string(c.config.Provider)),
		attribute.String("transcription.model", c.config.Model),
	)

	if !c.transition(StateIdle, StateConnecting) {
		return fmt.Errorf("transcription client already started")
	}

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.finish(err)
		return err
	}

	creds := c.creds.withEnvFallback(c.config.Provider)
	if err := creds.validate(c.config.Provider); err != nil {
		return fail(err)
	}
	wsURL, header, err := creds.endpointURL(c.config.Provider)
	if err != nil {
		return fail(err)
	}

	conn, err := dialWebsocket(ctx, wsURL, header)
	if err != nil {
		return fail(err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	log.Println("WebSocket connection established")

	frame, err := newSessionUpdateFrame(c.config)
	if err != nil {
		return fail(err)
	}
	if err := c.writeJSON(frame); err != nil {
		return fail(fmt.Errorf("failed to send session configuration: %w", err))
	}
	c.state.Store(int32(StateConfigured))
	log.Println("Session configuration sent")

	go c.guarded("send loop", c.sendLoop)
	go c.guarded("receive loop", c.receiveLoop)
	return nil
}

// guarded runs one connection loop, converting a panic into connection
// termination so no internal fault escapes the client.
func (c *Client) guarded(name string, loop func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			c.finish(fmt.Errorf("%s panicked: %v", name, recovered))
		}
	}()
	loop()
}

// SendAudio queues one audio frame for transmission. The frame is copied,
// so the caller may reuse its buffer. When the queue is full the oldest
// pending frame is evicted so the freshest audio keeps flowing; evictions
// are counted, never blocked on. Outside the Configured and Streaming
// states the frame is logged and discarded, not treated as an error.
func (c *Client) SendAudio(pcm []byte) error {
	switch state := c.currentState(); state {
	case StateConfigured, StateStreaming:
	default:
		log.Printf("Discarding audio frame in state %s", state)
		return nil
	}

	frame := make([]byte, len(pcm))
	copy(frame, pcm)
	select {
	case c.sendQueue <- frame:
		return nil
	default:
	}
	select {
	case <-c.sendQueue:
		c.droppedFrames.Add(1)
	default:
	}
	select {
	case c.sendQueue <- frame:
	default:
		c.droppedFrames.Add(1)
	}
	return nil
}

// Drain stops accepting audio, flushes the queue, performs the websocket
// close handshake and waits for the server to deliver its remaining
// events. Returns nil once the connection closed cleanly, or the context
// error if the server does not finish in time.
func (c *Client) Drain(ctx context.Context) error {
	if !c.transition(StateConfigured, StateDraining) && !c.transition(StateStreaming, StateDraining) {
		if c.currentState() != StateDraining && c.currentState() != StateClosed {
			return fmt.Errorf("connection not established")
		}
	}
	c.drainOnce.Do(func() { close(c.drainRequested) })

	select {
	case <-c.done:
		return c.closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the connection down immediately, discarding queued audio.
// Safe to call at any time and more than once.
func (c *Client) Close() error {
	c.finish(nil)
	return nil
}

// Done is closed once the connection has fully terminated, whatever the
// cause.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports why the connection ended. It returns nil while the client
// is live and nil after a clean shutdown.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	return c.currentState()
}

// DroppedFrames reports how many audio frames were evicted because the
// send queue was full.
func (c *Client) DroppedFrames() uint64 {
	return c.droppedFrames.Load()
}

func (c *Client) currentState() State {
	return State(c.state.Load())
}

func (c *Client) transition(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

func (c *Client) writeJSON(payload any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("connection not established")
	}
	return c.conn.WriteJSON(payload)
}

// finish is the single termination point: it records the cause, moves the
// state to closed, releases the socket and unblocks everyone waiting on
// Done. Only the first call wins.
func (c *Client) finish(err error) {
	c.finishOnce.Do(func() {
		c.closeErr = err
		c.state.Store(int32(StateClosed))
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.conn.Close()
		}
		c.connMu.Unlock()
		close(c.done)
	})
}
