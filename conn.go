package ftp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// connState is the position of a control connection in the login sequence.
type connState int

const (
	stateConnected connState = iota
	stateAuthenticated
	stateClosed
)

// controlConn is the control channel shared by a Client and the Session
// it logs into. All reads and writes happen with mu held.
type controlConn struct {
	mu sync.Mutex

	// conn is the underlying network connection
	conn net.Conn

	// reader accumulates partial lines across reads
	reader *bufio.Reader

	// state is guarded by mu
	state connState

	timeout       time.Duration
	maxReplyLines int
	maxLineLength int
	logger        *slog.Logger
}

func newControlConn(conn net.Conn, timeout time.Duration, maxReplyLines, maxLineLength int, logger *slog.Logger) *controlConn {
	return &controlConn{
		conn:          conn,
		reader:        bufio.NewReader(conn),
		state:         stateConnected,
		timeout:       timeout,
		maxReplyLines: maxReplyLines,
		maxLineLength: maxLineLength,
		logger:        logger,
	}
}

// check verifies the connection is in the wanted state. States only
// move forward and a Session is created authenticated, so any mismatch
// other than a closed connection is a Client used after Login.
// Must be called with mu held.
func (c *controlConn) check(want connState) error {
	switch c.state {
	case want:
		return nil
	case stateClosed:
		return ErrClosed
	default:
		return ErrLoggedIn
	}
}

// do runs fn with the connection deadline set to the earlier of the
// context deadline and the configured timeout. Cancelling ctx unblocks
// fn by moving the deadline into the past. Must be called with mu held.
func (c *controlConn) do(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return contextError(op, err)
	}

	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.closeLocked()
		return &IOError{Op: op, Err: err}
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(interrupted)
		_ = c.conn.SetDeadline(time.Now())
	})

	err := fn()

	if !stop() {
		// The interrupt ran or is running; let it finish so it cannot
		// clobber the deadline of the next operation.
		<-interrupted
	}

	if err == nil {
		return nil
	}
	return c.classify(ctx, op, err)
}

// classify turns a raw error from fn into one of the package error
// types, closing the connection when the stream position is lost.
func (c *controlConn) classify(ctx context.Context, op string, err error) error {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		if pe.Err != nil {
			c.closeLocked()
		}
		return err
	}

	c.closeLocked()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(op, ctxErr)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	return &IOError{Op: op, Err: err}
}

func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return fmt.Errorf("ftp: %s: %w", op, err)
}

// writeCommand writes text exactly as given; the caller supplies the
// trailing CRLF. net.Conn is unbuffered, so the command is on the wire
// when this returns. Must be called with mu held.
func (c *controlConn) writeCommand(ctx context.Context, text string) error {
	c.logger.Debug("ftp command", "cmd", redact(text))

	return c.do(ctx, "write", func() error {
		_, err := io.WriteString(c.conn, text)
		return err
	})
}

// readStatusCode reads one line and returns its code. Must be called with mu held.
func (c *controlConn) readStatusCode(ctx context.Context) (int, error) {
	var (
		code int
		line string
	)
	err := c.do(ctx, "read", func() error {
		var err error
		code, line, err = readStatusCode(c.reader, c.maxLineLength)
		return err
	})
	if err != nil {
		return 0, err
	}

	c.logger.Debug("ftp status", "code", code, "line", line)
	return code, nil
}

// readReply reads one complete reply. Must be called with mu held.
func (c *controlConn) readReply(ctx context.Context) (*Reply, error) {
	var reply *Reply
	err := c.do(ctx, "read", func() error {
		var err error
		reply, err = readReply(c.reader, c.maxReplyLines, c.maxLineLength)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("ftp response", "code", reply.Code, "message", reply.Message())
	return reply, nil
}

// readStatusReply reads one status line and classifies the reply by its
// code. A line opening a multi-line reply ("NNN-") is read to its end
// only when accept(code) holds; otherwise the line alone is returned and
// any continuation is left unread. Must be called with mu held.
func (c *controlConn) readStatusReply(ctx context.Context, accept func(code int) bool) (*Reply, error) {
	var reply *Reply
	err := c.do(ctx, "read", func() error {
		code, line, err := readStatusCode(c.reader, c.maxLineLength)
		if err != nil {
			return err
		}
		if continues(line) && accept(code) {
			reply, err = readContinuation(c.reader, code, line, c.maxReplyLines, c.maxLineLength)
			return err
		}
		reply = newReply(code, []string{line})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("ftp response", "code", reply.Code, "message", reply.Message())
	return reply, nil
}

// The locked variants serve the exported methods of Client and Session.

func (c *controlConn) lockedWriteCommand(ctx context.Context, want connState, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(want); err != nil {
		return err
	}
	return c.writeCommand(ctx, text)
}

func (c *controlConn) lockedReadStatusCode(ctx context.Context, want connState) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(want); err != nil {
		return 0, err
	}
	return c.readStatusCode(ctx)
}

func (c *controlConn) lockedReadReply(ctx context.Context, want connState) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(want); err != nil {
		return nil, err
	}
	return c.readReply(ctx)
}

// closeLocked closes the connection. Must be called with mu held.
func (c *controlConn) closeLocked() {
	if c.state == stateClosed {
		return
	}
	c.state = stateClosed
	_ = c.conn.Close()
}

// close closes the connection without waiting for an operation in
// flight: closing the socket first unblocks it.
func (c *controlConn) close() error {
	err := c.conn.Close()

	c.mu.Lock()
	already := c.state == stateClosed
	c.state = stateClosed
	c.mu.Unlock()

	if already {
		return nil
	}
	return err
}

// redact hides the PASS argument from logs and strips the line terminator.
func redact(text string) string {
	cmd := strings.TrimRight(text, "\r\n")
	if len(cmd) >= 5 && strings.EqualFold(cmd[:5], "PASS ") {
		return cmd[:5] + "****"
	}
	return cmd
}
