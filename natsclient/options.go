package natsclient

import (
	"log/slog"
	"time"
)

// ClientOption configures the NATS client using the functional options pattern
type ClientOption func(*Client)

// WithClientName sets the connection name reported to the server
func WithClientName(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.clientName = name
		}
	}
}

// WithMaxReconnects sets the maximum reconnect attempts (-1 for infinite)
func WithMaxReconnects(max int) ClientOption {
	return func(c *Client) {
		c.maxReconnects = max
	}
}

// WithReconnectWait sets the delay between reconnect attempts
func WithReconnectWait(wait time.Duration) ClientOption {
	return func(c *Client) {
		if wait > 0 {
			c.reconnectWait = wait
		}
	}
}

// WithTimeout sets the connection dial timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the structured logger used by the client
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReconnectHandler registers a callback invoked after reconnection
func WithReconnectHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onReconnect = fn
	}
}

// WithDisconnectHandler registers a callback invoked on disconnection
func WithDisconnectHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onDisconnect = fn
	}
}
