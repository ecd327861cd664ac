package ftp

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// ControlChannel is the control connection to an FTP server. Commands and
// replies are exchanged strictly one at a time, so a ControlChannel must not
// be used by more than one goroutine at once.
//
// A channel moves from Unconnected to Connected when the server greets it with
// a 220 reply, and to Closed on Close, Quit or a failed greeting. It cannot be
// reconnected.
type ControlChannel struct {
	// mu guards state and the connection fields below it
	mu    sync.Mutex
	state State

	// conn is the control connection, wrapped to apply the timeout
	conn   *deadlineConn
	reader *bufio.Reader
	writer *bufio.Writer

	// banner is the validated greeting
	banner Reply

	// timeout applies to dialing and to every blocking read or write
	timeout time.Duration

	logger              *slog.Logger
	dialer              Dialer
	listenConfig        *net.ListenConfig
	passiveHostFallback bool

	// encoding of the control connection text; nil passes bytes through
	encoding encoding.Encoding
}

// NewControlChannel returns an Unconnected channel configured by options.
func NewControlChannel(options ...Option) (*ControlChannel, error) {
	c := &ControlChannel{
		state:               Unconnected,
		timeout:             DefaultTimeout,
		logger:              slog.New(slog.DiscardHandler),
		dialer:              &net.Dialer{},
		listenConfig:        &net.ListenConfig{},
		passiveHostFallback: true,
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply option")
		}
	}

	return c, nil
}

// Dial connects to an FTP server at the given address and waits for its
// greeting. The address should be in the form "host:port".
//
// Example:
//
//	cc, err := ftp.Dial("ftp.example.com:21", ftp.WithTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cc.Quit()
func Dial(addr string, options ...Option) (*ControlChannel, error) {
	return DialContext(context.Background(), addr, options...)
}

// DialContext is like Dial but uses ctx for the TCP connect.
func DialContext(ctx context.Context, addr string, options ...Option) (*ControlChannel, error) {
	c, err := NewControlChannel(options...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx, addr); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens the TCP connection, reads the greeting and checks that it is
// a 220 reply. ctx bounds both the dial and the wait for the greeting. On any
// failure the socket is closed before Connect returns and the channel is left
// Closed.
func (c *ControlChannel) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	if c.state != Unconnected {
		state := c.state
		c.mu.Unlock()
		return illegalState("connect", "channel is "+state.String())
	}
	timeout := c.timeout
	c.mu.Unlock()

	c.logger.Debug("connecting to ftp server", "addr", addr, "timeout", timeout)

	dialCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := c.dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		c.setState(Closed)
		return ioError("connect", "failed to connect to "+addr, err)
	}

	conn := newDeadlineConn(raw, timeout)
	reader := c.newReader(conn)

	stop := context.AfterFunc(ctx, func() {
		raw.Close()
	})
	banner, err := readReply(reader)
	if !stop() {
		err = ioError("connect", "connect cancelled", ctx.Err())
	}
	if err == nil {
		c.logReply(banner)
		banner, err = validateReply("connect", banner, []string{CodeServiceReady})
	}
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			c.logger.Debug("failed to close control connection", "error", cerr)
		}
		c.setState(Closed)
		return withOp(err, "connect")
	}

	c.mu.Lock()
	c.conn = conn
	c.reader = reader
	c.writer = c.newWriter(conn)
	c.banner = banner
	c.state = Connected
	c.mu.Unlock()

	c.logger.Debug("connected to ftp server", "addr", addr, "banner", banner.Text)
	return nil
}

// SendCommand writes text followed by CRLF and returns the server's reply.
// The reply code is not checked; use ValidateReply or Expect for that.
//
// text must not contain CR or LF.
func (c *ControlChannel) SendCommand(text string) (Reply, error) {
	cmd := command(text)
	op := redact(text)

	if strings.ContainsAny(text, eol) {
		return Reply{}, illegalState(op, "command contains a line terminator")
	}

	reader, writer, err := c.session(op)
	if err != nil {
		return Reply{}, err
	}

	c.logger.Debug("ftp command", "cmd", cmd)

	if _, err := writer.WriteString(text + eol); err != nil {
		return Reply{}, ioError(op, "failed to send command", err)
	}
	if err := writer.Flush(); err != nil {
		return Reply{}, ioError(op, "failed to send command", err)
	}

	reply, err := readReply(reader)
	if err != nil {
		return Reply{}, withOp(err, op)
	}
	c.logReply(reply)

	return reply, nil
}

// ReadReply reads one more reply without sending a command, such as the
// 226 that follows a completed transfer.
func (c *ControlChannel) ReadReply() (Reply, error) {
	reader, _, err := c.session("read reply")
	if err != nil {
		return Reply{}, err
	}

	reply, err := readReply(reader)
	if err != nil {
		return Reply{}, err
	}
	c.logReply(reply)

	return reply, nil
}

// Expect sends a command and verifies the reply code is one of expected.
func (c *ControlChannel) Expect(text string, expected ...string) (Reply, error) {
	reply, err := c.SendCommand(text)
	if err != nil {
		return reply, err
	}
	return validateReply(redact(text), reply, expected)
}

// SetTimeout changes the timeout applied to subsequent reads and writes.
// The channel must be Connected.
func (c *ControlChannel) SetTimeout(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return illegalState("set timeout", "channel is "+c.state.String())
	}
	if timeout < 0 {
		return illegalState("set timeout", "negative timeout "+timeout.String())
	}

	c.timeout = timeout
	c.conn.setTimeout(timeout)
	return nil
}

// Timeout returns the configured timeout.
func (c *ControlChannel) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// State returns the lifecycle state of the channel.
func (c *ControlChannel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Banner returns the greeting the server sent on connect.
func (c *ControlChannel) Banner() Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// LocalAddr returns the local address of the control connection, or nil if
// the channel is not connected.
func (c *ControlChannel) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

// RemoteAddr returns the server address of the control connection, or nil if
// the channel is not connected.
func (c *ControlChannel) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

// Quit sends QUIT and closes the channel. The connection is released even if
// the server does not answer with 221.
func (c *ControlChannel) Quit() error {
	_, quitErr := c.Expect("QUIT", CodeClosingControl)
	if IsIllegalState(quitErr) {
		return quitErr
	}

	closeErr := c.Close()
	if quitErr != nil {
		return quitErr
	}
	return closeErr
}

// Close releases the control connection: pending output is flushed, the
// reading side is shut down and the socket is closed. All three steps are
// attempted; if any failed, the last failure is returned.
func (c *ControlChannel) Close() error {
	c.mu.Lock()
	if c.state != Connected {
		state := c.state
		c.mu.Unlock()
		return illegalState("close", "channel is "+state.String())
	}
	conn, writer := c.conn, c.writer
	c.state = Closed
	c.mu.Unlock()

	var last error
	if err := writer.Flush(); err != nil {
		c.logger.Debug("failed to flush control connection", "error", err)
		last = err
	}
	if err := conn.closeRead(); err != nil {
		c.logger.Debug("failed to shut down control connection reads", "error", err)
		last = err
	}
	if err := conn.Close(); err != nil {
		c.logger.Debug("failed to close control connection", "error", err)
		last = err
	}

	if last != nil {
		return ioError("close", "failed to release control connection", last)
	}
	return nil
}

// session returns the reader and writer of a Connected channel.
func (c *ControlChannel) session(op string) (*bufio.Reader, *bufio.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return nil, nil, illegalState(op, "channel is "+c.state.String())
	}
	return c.reader, c.writer, nil
}

func (c *ControlChannel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *ControlChannel) logReply(r Reply) {
	c.logger.Debug("ftp reply", "code", r.Code, "text", r.Text)
}
