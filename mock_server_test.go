package ftp

import (
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockServer provides a simple way to script server responses
type mockServer struct {
	listener net.Listener
	addr     string

	// greeting is written verbatim once the connection is accepted
	greeting string

	// handlers script replies per command, e.g. "USER".
	// Commands without a handler get the default replies below.
	handlers map[string]func(conn *textproto.Conn, args string)

	mu       sync.Mutex
	conn     net.Conn
	received []string

	done chan struct{}
}

func newMockServer(t *testing.T) *mockServer {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return &mockServer{
		listener: l,
		addr:     l.Addr().String(),
		greeting: "220 Service ready\r\n",
		handlers: make(map[string]func(*textproto.Conn, string)),
		done:     make(chan struct{}),
	}
}

func (s *mockServer) start() {
	go func() {
		defer close(s.done)
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		textConn := textproto.NewConn(conn)
		defer textConn.Close()

		if _, err := conn.Write([]byte(s.greeting)); err != nil {
			return
		}

		for {
			line, err := textConn.ReadLine()
			if err != nil {
				return
			}

			parts := strings.SplitN(line, " ", 2)
			cmd := strings.ToUpper(parts[0])
			args := ""
			if len(parts) > 1 {
				args = parts[1]
			}

			s.mu.Lock()
			s.received = append(s.received, line)
			s.mu.Unlock()

			if handler, ok := s.handlers[cmd]; ok {
				handler(textConn, args)
				continue
			}

			switch cmd {
			case "USER":
				_ = textConn.PrintfLine("331 User name okay, need password.")
			case "PASS":
				_ = textConn.PrintfLine("230 User logged in, proceed.")
			case "NOOP":
				_ = textConn.PrintfLine("200 Command okay.")
			case "QUIT":
				_ = textConn.PrintfLine("221 Service closing control connection.")
				return
			default:
				_ = textConn.PrintfLine("502 Command not implemented.")
			}
		}
	}()
}

// commands returns the command lines received so far.
func (s *mockServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func (s *mockServer) stop() {
	s.listener.Close()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}

// silent is a handler that never replies.
func silent(*textproto.Conn, string) {}

// replyRaw returns a handler writing raw, already terminated, text.
func replyRaw(raw string) func(*textproto.Conn, string) {
	return func(c *textproto.Conn, _ string) {
		_, _ = c.W.WriteString(raw)
		_ = c.W.Flush()
	}
}
