package ftp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxReplyLines bounds the number of lines accepted in a single
// multi-line reply.
const DefaultMaxReplyLines = 1000

// DefaultMaxLineLength bounds the length of a single reply line,
// terminator excluded.
const DefaultMaxLineLength = 8192

// Reply represents an FTP server reply.
type Reply struct {
	// Code is the three-digit reply code (e.g., 220, 331, 530)
	Code int

	// Text is every line of the reply joined with "\n", code prefixes included
	Text string

	// Lines contains each line of the reply without its line terminator
	Lines []string
}

// Is2xx returns true if the reply code is in the 2xx range (success).
func (r *Reply) Is2xx() bool {
	return r.Code >= 200 && r.Code < 300
}

// Is3xx returns true if the reply code is in the 3xx range (intermediate).
func (r *Reply) Is3xx() bool {
	return r.Code >= 300 && r.Code < 400
}

// Is4xx returns true if the reply code is in the 4xx range (temporary failure).
func (r *Reply) Is4xx() bool {
	return is4xx(r.Code)
}

// Is5xx returns true if the reply code is in the 5xx range (permanent failure).
func (r *Reply) Is5xx() bool {
	return is5xx(r.Code)
}

// Message returns the human-readable part of the reply: the text with
// the "NNN " and "NNN-" prefixes removed.
func (r *Reply) Message() string {
	prefix := fmt.Sprintf("%03d", r.Code)
	msg := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		switch {
		case line == prefix:
			msg = append(msg, "")
		case len(line) >= 4 && line[:3] == prefix && (line[3] == ' ' || line[3] == '-'):
			msg = append(msg, line[4:])
		default:
			msg = append(msg, line)
		}
	}
	return strings.Join(msg, "\n")
}

// String returns the full reply text.
func (r *Reply) String() string {
	return r.Text
}

// readLine reads one LF-terminated line and strips the terminator.
// A stream that ends in the middle of a line yields io.ErrUnexpectedEOF.
// Lines longer than maxLen fail with a *ProtocolError wrapping
// ErrLineTooLong; zero or less means no bound.
func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		line = append(line, frag...)

		if maxLen > 0 && len(bytes.TrimRight(line, "\r\n")) > maxLen {
			return "", lineTooLong(line, maxLen)
		}

		switch {
		case err == nil:
			return strings.TrimRight(string(line), "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF && len(line) > 0:
			return "", io.ErrUnexpectedEOF
		default:
			return "", err
		}
	}
}

func lineTooLong(line []byte, maxLen int) error {
	const keep = 32
	if len(line) > keep {
		line = line[:keep]
	}
	return &ProtocolError{
		Line:   string(line),
		Reason: fmt.Sprintf("line exceeds %d bytes", maxLen),
		Err:    ErrLineTooLong,
	}
}

// continues reports whether line opens a multi-line reply ("NNN-").
func continues(line string) bool {
	return len(line) > 3 && line[3] == '-'
}

// parseStatusCode returns the reply code held in the first three
// characters of line. Signs and spaces are rejected, only digits count.
func parseStatusCode(line string) (int, error) {
	if len(line) < 3 {
		return 0, &ProtocolError{Line: line, Reason: "status line shorter than three characters"}
	}

	code := 0
	for i := 0; i < 3; i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return 0, &ProtocolError{Line: line, Reason: "status code is not numeric"}
		}
		code = code*10 + int(c-'0')
	}
	return code, nil
}

// readStatusCode reads exactly one line and returns its status code.
// The rest of the line is discarded.
func readStatusCode(r *bufio.Reader, maxLen int) (int, string, error) {
	line, err := readLine(r, maxLen)
	if err != nil {
		return 0, "", err
	}

	code, err := parseStatusCode(line)
	if err != nil {
		return 0, line, err
	}
	return code, line, nil
}

// readReply reads a complete FTP reply from the reader.
// It handles both single-line and multi-line replies.
//
// Single-line format: "200 OK\r\n"
// Multi-line format:
//
//	"150-Here comes the directory listing.\r\n"
//	"drwxr-xr-x 2 ftp ftp 4096 pub\r\n"
//	"150 Directory send OK.\r\n"
//
// The reply is complete when a line starts with the code followed by a
// space. Lines in between are kept as they are, whatever their prefix.
// maxLines bounds the reply length; zero or less means no bound.
func readReply(r *bufio.Reader, maxLines, maxLen int) (*Reply, error) {
	code, first, err := readStatusCode(r, maxLen)
	if err != nil {
		return nil, err
	}

	// Common single-line reply, or a bare code
	if len(first) == 3 || first[3] == ' ' {
		return newReply(code, []string{first}), nil
	}
	return readContinuation(r, code, first, maxLines, maxLen)
}

// readContinuation reads the lines following first up to and including
// the terminating "<code> " line.
func readContinuation(r *bufio.Reader, code int, first string, maxLines, maxLen int) (*Reply, error) {
	lines := []string{first}
	terminator := first[:3] + " "

	for {
		if maxLines > 0 && len(lines) >= maxLines {
			return nil, &ProtocolError{
				Line:   first,
				Reason: fmt.Sprintf("multi-line reply exceeds %d lines", maxLines),
			}
		}

		line, err := readLine(r, maxLen)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &ProtocolError{
					Line:   first,
					Reason: "multi-line reply not terminated",
					Err:    io.ErrUnexpectedEOF,
				}
			}
			return nil, err
		}

		lines = append(lines, line)
		if strings.HasPrefix(line, terminator) {
			return newReply(code, lines), nil
		}
	}
}

func newReply(code int, lines []string) *Reply {
	return &Reply{
		Code:  code,
		Text:  strings.Join(lines, "\n"),
		Lines: lines,
	}
}
