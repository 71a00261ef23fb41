package ftp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Option is a functional option for configuring an FTP client.
type Option func(*Client) error

// Dialer establishes the control connection. *net.Dialer satisfies it;
// proxies and test doubles can too.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// WithTimeout sets the timeout for the connection and for every read or
// write on the control channel. A context deadline that comes earlier
// wins. Zero disables the timeout, leaving only the context to bound
// operations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("negative timeout %v", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithLogger enables debug logging using the provided logger.
// All FTP commands and replies will be logged at debug level, with the
// PASS argument redacted.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	client, _ := ftp.Dial("ftp.example.com:21", ftp.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithDialer sets a custom Dialer for establishing the connection.
// This can be used to configure source addresses, keep-alive settings, etc.
func WithDialer(dialer Dialer) Option {
	return func(c *Client) error {
		if dialer == nil {
			return errors.New("nil dialer")
		}
		c.dialer = dialer
		return nil
	}
}

// WithMaxReplyLines bounds the number of lines accepted in one
// multi-line reply. Longer replies fail with a *ProtocolError.
// Zero removes the bound.
func WithMaxReplyLines(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("negative max reply lines %d", n)
		}
		c.maxReplyLines = n
		return nil
	}
}

// WithMaxLineLength bounds the length of a single reply line. Longer
// lines fail with a *ProtocolError wrapping ErrLineTooLong and close the
// connection. Zero removes the bound.
func WithMaxLineLength(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("negative max line length %d", n)
		}
		c.maxLineLength = n
		return nil
	}
}

// WithCircuitBreaker runs the dial and greeting inside cb. Once the
// breaker opens, Dial fails fast with gobreaker.ErrOpenState instead of
// contacting a server that keeps refusing. One breaker is meant to be
// shared by every Dial to the same server.
//
// Example:
//
//	cb := ftp.NewCircuitBreaker("ftp.example.com:21", 1, time.Minute, 30*time.Second)
//	client, err := ftp.Dial("ftp.example.com:21", ftp.WithCircuitBreaker(cb))
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker[*Client]) Option {
	return func(c *Client) error {
		c.breaker = cb
		return nil
	}
}
