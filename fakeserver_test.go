package ftp

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
)

// fakeServer is a scripted FTP server that serves a single control
// connection.
type fakeServer struct {
	addr string

	// done is closed once the server has finished with the connection
	done chan struct{}

	mu       sync.Mutex
	received []string
}

// startFakeServer listens on a loopback port, writes banner to the first
// connection and then passes every command line to respond. A non-empty
// return value is written back as the reply. The server stops after QUIT or
// when the client goes away.
func startFakeServer(t *testing.T, banner string, respond func(cmd string, conn net.Conn) string) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	s := &fakeServer{addr: ln.Addr().String(), done: make(chan struct{})}

	go func() {
		defer close(s.done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := io.WriteString(conn, banner); err != nil {
			return
		}

		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			s.mu.Lock()
			s.received = append(s.received, line)
			s.mu.Unlock()

			cmd := strings.TrimRight(line, "\r\n")
			if respond != nil {
				if reply := respond(cmd, conn); reply != "" {
					if _, err := io.WriteString(conn, reply); err != nil {
						return
					}
				}
			}
			if strings.EqualFold(cmd, "QUIT") {
				return
			}
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		<-s.done
	})

	return s
}

// lines returns the raw command lines received so far, terminators included.
func (s *fakeServer) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

// replies answers commands from a table keyed by verb. QUIT gets a 221 and
// anything else a 502.
func replies(table map[string]string) func(string, net.Conn) string {
	return func(cmd string, _ net.Conn) string {
		verb, _, _ := strings.Cut(cmd, " ")
		if reply, ok := table[strings.ToUpper(verb)]; ok {
			return reply
		}
		if strings.EqualFold(verb, "QUIT") {
			return "221 Goodbye\r\n"
		}
		return "502 Command not implemented\r\n"
	}
}
