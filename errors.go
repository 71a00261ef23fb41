package ftp

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a connection that has been
	// closed, either explicitly or after a transport failure.
	ErrClosed = errors.New("ftp: connection closed")

	// ErrLoggedIn is returned by operations on a Client whose connection
	// has been handed over to a Session by a successful Login.
	ErrLoggedIn = errors.New("ftp: client already logged in, use the session")

	// ErrInvalidCredentials is returned by Login, before anything is
	// sent, when the username or password contains CR or LF.
	ErrInvalidCredentials = errors.New("ftp: credentials must not contain CR or LF")

	// ErrLineTooLong is wrapped by the *ProtocolError returned when a
	// server line exceeds the configured maximum length.
	ErrLineTooLong = errors.New("ftp: line too long")
)

// IOError reports a failure of the underlying transport: connection
// refused, reset, closed mid-read, or a failed write.
type IOError struct {
	// Op is the operation that failed ("dial", "read", "write")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("ftp: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// ProtocolError reports data from the server that does not follow the
// control channel line format.
type ProtocolError struct {
	// Line is the offending line, without its terminator
	Line string

	// Reason describes what was wrong with the line
	Reason string

	// Err is an optional underlying cause (e.g. io.ErrUnexpectedEOF)
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ftp: protocol error: %s: %q: %v", e.Reason, e.Line, e.Err)
	}
	return fmt.Sprintf("ftp: protocol error: %s: %q", e.Reason, e.Line)
}

// Unwrap returns the underlying cause, if any.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ConnectError is returned when the transport connected but the server
// greeting was not 220 (service ready).
type ConnectError struct {
	// Code is the greeting's reply code (e.g. 421)
	Code int

	// Response is the greeting text
	Response string
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("ftp: server not ready: %s (code %d)", e.Response, e.Code)
}

// IsTemporary returns true if the greeting was a temporary failure (4xx).
func (e *ConnectError) IsTemporary() bool {
	return is4xx(e.Code)
}

// IsPermanent returns true if the greeting was a permanent failure (5xx).
func (e *ConnectError) IsPermanent() bool {
	return is5xx(e.Code)
}

// LoginError is returned when the USER/PASS exchange completed but did
// not end with 230 (user logged in).
type LoginError struct {
	// Command is the last command sent ("USER" or "PASS")
	Command string

	// Code is the final reply code
	Code int

	// Response is the final reply text
	Response string
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	return fmt.Sprintf("ftp: login failed after %s: %s (code %d)", e.Command, e.Response, e.Code)
}

// IsTemporary returns true if the login failed with a 4xx code.
func (e *LoginError) IsTemporary() bool {
	return is4xx(e.Code)
}

// IsPermanent returns true if the login failed with a 5xx code.
func (e *LoginError) IsPermanent() bool {
	return is5xx(e.Code)
}

// TimeoutError is returned when an operation did not complete before its
// deadline. The connection is closed when this happens mid-exchange.
type TimeoutError struct {
	// Op is the operation that timed out ("dial", "read", "write")
	Op string

	// Err is the underlying deadline error
	Err error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ftp: %s timed out: %v", e.Op, e.Err)
}

// Unwrap returns the underlying deadline error.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Timeout always returns true. It matches the net.Error convention.
func (e *TimeoutError) Timeout() bool {
	return true
}

func is4xx(code int) bool {
	return code >= 400 && code < 500
}

func is5xx(code int) bool {
	return code >= 500 && code < 600
}
