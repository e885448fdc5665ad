package realtime

import (
	"fmt"
	"log"

	"github.com/gorilla/websocket"

	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

// RegisterHandler subscribes handler to messages of the given type.
// Handlers run on the receive goroutine in registration order, so they
// observe messages exactly as the server sent them. Register before
// Connect to guarantee no message is missed.
func (c *Client) RegisterHandler(messageType string, handler transcribe.Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

// RegisterDefaultHandler subscribes handler to every message type that has
// no dedicated handler registered.
func (c *Client) RegisterDefaultHandler(handler transcribe.Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.defaultHandlers = append(c.defaultHandlers, handler)
}

// receiveLoop is the only reader of the websocket. Every inbound message
// is parsed and dispatched in arrival order; any read error, clean or
// not, terminates the session.
func (c *Client) receiveLoop() {
	defer log.Println("Message receiving complete")
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				log.Println("Connection closed")
				c.finish(nil)
			case c.currentState() == StateClosed:
				c.finish(nil)
			default:
				log.Printf("Connection closed unexpectedly: %v", err)
				c.finish(fmt.Errorf("connection closed unexpectedly: %w", err))
			}
			return
		}

		msg, err := transcribe.ParseMessage(data)
		if err != nil {
			log.Printf("Skipping malformed message: %v", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg transcribe.Message) {
	c.handlersMu.RLock()
	handlers := c.handlers[msg.Type]
	if len(handlers) == 0 {
		handlers = c.defaultHandlers
	}
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		c.invokeHandler(handler, msg)
	}
}

// invokeHandler isolates handler panics so one bad callback cannot kill
// the receive loop.
func (c *Client) invokeHandler(handler transcribe.Handler, msg transcribe.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Message handler panicked on %s: %v", msg.Type, r)
		}
	}()
	handler(msg)
}
