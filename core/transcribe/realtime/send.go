package realtime

import (
	"fmt"
	"log"

	"github.com/gorilla/websocket"
)

// sendLoop is the only writer of audio frames. It forwards queued frames
// until a drain is requested, then flushes whatever is still pending and
// starts the close handshake. The receive loop observes the server's
// close reply and completes the shutdown.
func (c *Client) sendLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.drainRequested:
			c.flushQueue()
			c.sendCloseFrame()
			return
		case frame := <-c.sendQueue:
			if err := c.writeAudioFrame(frame); err != nil {
				log.Printf("Connection closed unexpectedly: %v", err)
				c.finish(fmt.Errorf("connection closed unexpectedly: %w", err))
				return
			}
			c.transition(StateConfigured, StateStreaming)
		}
	}
}

func (c *Client) writeAudioFrame(frame []byte) error {
	return c.writeJSON(newAudioAppendFrame(frame))
}

func (c *Client) flushQueue() {
	for {
		select {
		case frame := <-c.sendQueue:
			if err := c.writeAudioFrame(frame); err != nil {
				log.Printf("Failed to flush pending audio: %v", err)
				return
			}
		default:
			return
		}
	}
}

func (c *Client) sendCloseFrame() {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
		log.Printf("Failed to send close frame: %v", err)
	}
}
