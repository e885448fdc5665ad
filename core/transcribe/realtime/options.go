package realtime

import "fmt"

const defaultQueueSize = 64

// ClientOption configures a Client at construction time.
type ClientOption func(*Client) error

// WithCredentials sets explicit connection credentials instead of the
// environment fallbacks.
func WithCredentials(creds Credentials) ClientOption {
	return func(c *Client) error {
		c.creds = creds
		return nil
	}
}

// WithQueueSize overrides the outbound audio queue capacity. A smaller
// queue bounds latency tighter at the cost of dropping frames sooner on a
// slow link.
func WithQueueSize(size int) ClientOption {
	return func(c *Client) error {
		if size <= 0 {
			return fmt.Errorf("queue size must be positive, got %d", size)
		}
		c.sendQueue = make(chan []byte, size)
		return nil
	}
}
