// Package ftp implements the login half of an FTP control channel client.
//
// # Overview
//
// This package connects to an FTP server over plain TCP, validates the
// server greeting and authenticates with USER/PASS. It provides:
//   - A reply reader for single-line and multi-line replies
//   - A login sequence whose states are separate types
//   - Per-call context cancellation and timeouts on every read and write
//   - Typed errors for transport, protocol, greeting and login failures
//   - An optional circuit breaker around dialing
//
// Data connections (PASV/PORT) and file transfers are not implemented.
//
// # Basic Usage
//
// Dial returns a connected *Client. Login turns it into an authenticated
// *Session:
//
//	client, err := ftp.Dial("ftp.example.com:21")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	session, err := client.Login(ctx, "username", "password")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Quit(ctx)
//
// # Replies
//
// A reply is complete when a line starts with its three-digit code
// followed by a space:
//
//	150-Here comes the directory listing.
//	drwxr-xr-x 2 ftp ftp 4096 pub
//	150 Directory send OK.
//
// Reply.Text holds all lines joined with "\n"; Reply.Message strips the
// code prefixes.
//
// The greeting and the login replies are classified by their first
// line. Only a 220 greeting, or a 230 or 331 login reply, whose fourth
// character is '-' is read on to its terminator.
//
// Lines longer than WithMaxLineLength (DefaultMaxLineLength by default)
// fail with a *ProtocolError wrapping ErrLineTooLong, and replies longer
// than WithMaxReplyLines fail with a *ProtocolError.
//
// # Timeouts
//
// Every read and write is bounded by the earlier of the context deadline
// and the WithTimeout duration (30 seconds by default). Expiry returns a
// *TimeoutError. Because the position in the reply stream is then
// unknown, the connection is closed.
//
// # Error Handling
//
// Use errors.As to inspect failures:
//
//	session, err := client.Login(ctx, user, pass)
//	var le *ftp.LoginError
//	if errors.As(err, &le) {
//	    fmt.Printf("Command: %s\n", le.Command)
//	    fmt.Printf("Response: %s\n", le.Response)
//	    fmt.Printf("Code: %d\n", le.Code)
//	}
package ftp
