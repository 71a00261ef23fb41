package ftp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// DefaultTimeout is the per-operation timeout used when WithTimeout is not given.
const DefaultTimeout = 30 * time.Second

// Client is a connected, not yet authenticated, FTP control channel.
// Login hands the connection over to a Session.
type Client struct {
	// addr is the "host:port" the client dials
	addr string

	// ctrl is the control channel, set once connected
	ctrl *controlConn

	// greeting is the 220 reply read on connect
	greeting *Reply

	// timeout bounds dialing and every read or write
	timeout time.Duration

	// maxReplyLines bounds multi-line replies
	maxReplyLines int

	// maxLineLength bounds a single reply line
	maxLineLength int

	// logger is used for debug logging
	logger *slog.Logger

	// dialer is used to establish the connection
	dialer Dialer

	// breaker, if set, wraps dial and greeting
	breaker *gobreaker.CircuitBreaker[*Client]
}

// Dial connects to an FTP server at the given address and validates its
// greeting. The address should be in the form "host:port".
//
// Example:
//
//	client, err := ftp.Dial("ftp.example.com:21")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func Dial(addr string, options ...Option) (*Client, error) {
	return DialContext(context.Background(), addr, options...)
}

// DialContext is like Dial but bounds the connection and greeting with ctx.
//
// A greeting other than 220 returns a *ConnectError carrying the code.
// A greeting without a numeric code returns a *ProtocolError. The
// connection is closed on every failure; nothing is retried.
func DialContext(ctx context.Context, addr string, options ...Option) (*Client, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("ftp: invalid address: %w", err)
	}

	c := &Client{
		addr:          addr,
		timeout:       DefaultTimeout,
		maxReplyLines: DefaultMaxReplyLines,
		maxLineLength: DefaultMaxLineLength,
		logger:        slog.New(slog.DiscardHandler),
		dialer:        &net.Dialer{},
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("ftp: failed to apply option: %w", err)
		}
	}

	if c.breaker == nil {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}

	return c.breaker.Execute(func() (*Client, error) {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	})
}

// connect dials the server and reads the greeting.
func (c *Client) connect(ctx context.Context) error {
	c.logger.Debug("connecting to ftp server", "addr", c.addr)

	dialCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.addr)
	if err != nil {
		return dialError(ctx, dialCtx, err)
	}

	ctrl := newControlConn(conn, c.timeout, c.maxReplyLines, c.maxLineLength, c.logger)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	// Only a 220 banner is read past its first line; any other code
	// fails the connection as soon as it is seen.
	greeting, err := ctrl.readStatusReply(ctx, func(code int) bool { return code == 220 })
	if err != nil {
		ctrl.closeLocked()
		return err
	}

	c.logger.Debug("ftp greeting", "code", greeting.Code, "message", greeting.Message())

	if greeting.Code != 220 {
		ctrl.closeLocked()
		return &ConnectError{
			Code:     greeting.Code,
			Response: greeting.Message(),
		}
	}

	c.ctrl = ctrl
	c.greeting = greeting
	return nil
}

func dialError(ctx, dialCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return contextError("dial", ctx.Err())
	}
	if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: "dial", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Op: "dial", Err: err}
	}
	return &IOError{Op: "dial", Err: err}
}

// Login authenticates with the FTP server using the provided username and
// password, and returns the authenticated Session. From then on the
// Client refuses further use with ErrLoggedIn.
//
// USER answered with 230 logs in without a password. USER answered with
// 331 is followed by PASS, which must be answered with 230. Each reply
// is classified by its first line. Any other code is returned as a
// *LoginError; the Client stays connected and Login may be called
// again, unless the rejection opened a multi-line reply, in which case
// the connection is closed.
//
// Credentials containing CR or LF are refused with ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.ContainsAny(username, "\r\n") || strings.ContainsAny(password, "\r\n") {
		return nil, ErrInvalidCredentials
	}

	c.ctrl.mu.Lock()
	defer c.ctrl.mu.Unlock()

	if err := c.ctrl.check(stateConnected); err != nil {
		return nil, err
	}

	if err := c.ctrl.writeCommand(ctx, "USER "+username+"\r\n"); err != nil {
		return nil, err
	}

	reply, err := c.ctrl.readStatusReply(ctx, func(code int) bool { return code == 230 || code == 331 })
	if err != nil {
		return nil, err
	}

	switch reply.Code {
	case 230:
		// No password required
	case 331:
		if err := c.ctrl.writeCommand(ctx, "PASS "+password+"\r\n"); err != nil {
			return nil, err
		}

		reply, err = c.ctrl.readStatusReply(ctx, func(code int) bool { return code == 230 })
		if err != nil {
			return nil, err
		}

		if reply.Code != 230 {
			c.dropUnreadReply(reply)
			return nil, &LoginError{
				Command:  "PASS",
				Code:     reply.Code,
				Response: reply.Message(),
			}
		}
	default:
		c.dropUnreadReply(reply)
		return nil, &LoginError{
			Command:  "USER",
			Code:     reply.Code,
			Response: reply.Message(),
		}
	}

	c.ctrl.state = stateAuthenticated
	c.logger.Debug("logged in", "user", username)

	return &Session{ctrl: c.ctrl, user: username}, nil
}

// dropUnreadReply closes the connection when reply opened a multi-line
// reply whose remaining lines were left unread. Must be called with the
// connection lock held.
func (c *Client) dropUnreadReply(reply *Reply) {
	if continues(reply.Lines[0]) {
		c.ctrl.closeLocked()
	}
}

// Greeting returns the server's 220 reply.
func (c *Client) Greeting() *Reply {
	return c.greeting
}

// WriteCommand writes text to the control channel as is. The caller
// supplies the trailing "\r\n".
func (c *Client) WriteCommand(ctx context.Context, text string) error {
	return c.ctrl.lockedWriteCommand(ctx, stateConnected, text)
}

// ReadStatusCode reads exactly one line and returns its three-digit code.
func (c *Client) ReadStatusCode(ctx context.Context) (int, error) {
	return c.ctrl.lockedReadStatusCode(ctx, stateConnected)
}

// ReadReply reads one complete single-line or multi-line reply.
func (c *Client) ReadReply(ctx context.Context) (*Reply, error) {
	return c.ctrl.lockedReadReply(ctx, stateConnected)
}

// Close closes the connection without sending QUIT. It is a no-op once
// Login has handed the connection to a Session.
func (c *Client) Close() error {
	c.ctrl.mu.Lock()
	defer c.ctrl.mu.Unlock()

	if c.ctrl.state != stateConnected {
		return nil
	}
	c.ctrl.state = stateClosed
	return c.ctrl.conn.Close()
}
