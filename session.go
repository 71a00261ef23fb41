package ftp

import (
	"context"
	"errors"
)

// Session is an authenticated FTP control channel, returned by Client.Login.
type Session struct {
	ctrl *controlConn
	user string
}

// User returns the name the session logged in with.
func (s *Session) User() string {
	return s.user
}

// WriteCommand writes text to the control channel as is. The caller
// supplies the trailing "\r\n".
func (s *Session) WriteCommand(ctx context.Context, text string) error {
	return s.ctrl.lockedWriteCommand(ctx, stateAuthenticated, text)
}

// ReadStatusCode reads exactly one line and returns its three-digit code.
func (s *Session) ReadStatusCode(ctx context.Context) (int, error) {
	return s.ctrl.lockedReadStatusCode(ctx, stateAuthenticated)
}

// ReadReply reads one complete single-line or multi-line reply.
func (s *Session) ReadReply(ctx context.Context) (*Reply, error) {
	return s.ctrl.lockedReadReply(ctx, stateAuthenticated)
}

// Quit sends QUIT, reads the server's reply and closes the connection.
// The connection is closed even when the QUIT exchange fails.
func (s *Session) Quit(ctx context.Context) error {
	s.ctrl.mu.Lock()
	err := s.ctrl.check(stateAuthenticated)
	if err == nil {
		err = s.ctrl.writeCommand(ctx, "QUIT\r\n")
	}
	if err == nil {
		// The connection closes next, so the first line is enough.
		_, err = s.ctrl.readStatusReply(ctx, func(int) bool { return false })
	}
	s.ctrl.mu.Unlock()

	if errors.Is(err, ErrClosed) {
		return nil
	}

	if cerr := s.ctrl.close(); err == nil {
		err = cerr
	}
	return err
}

// Close closes the connection without sending QUIT. An operation in
// flight on another goroutine fails with an *IOError.
func (s *Session) Close() error {
	return s.ctrl.close()
}
