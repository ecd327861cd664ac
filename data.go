package ftp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DataConnectMode selects how a data connection is established.
type DataConnectMode int

const (
	// Passive mode (PASV): the server listens and the client connects.
	// This is the default.
	Passive DataConnectMode = iota

	// Active mode (PORT): the client listens and the server connects once
	// a transfer command has been sent.
	Active
)

// String returns "passive" or "active".
func (m DataConnectMode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("DataConnectMode(%d)", int(m))
	}
}

// ParseDataConnectMode parses "passive"/"pasv" or "active"/"port",
// ignoring case.
func ParseDataConnectMode(s string) (DataConnectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passive", "pasv":
		return Passive, nil
	case "active", "port":
		return Active, nil
	}
	return 0, fmt.Errorf("unknown data connect mode %q", s)
}

// OpenDataConnection negotiates a data connection over the control channel.
//
// In Passive mode it sends PASV, expects 227 and connects to the advertised
// address; the returned DataConn is already connected.
//
// In Active mode it listens on an ephemeral port of the control connection's
// local address, sends PORT and expects 200. The server only connects after
// a transfer command, so the returned DataConn is pending: send the transfer
// command, then call Accept.
//
// On failure nothing is left open.
func (c *ControlChannel) OpenDataConnection(ctx context.Context, mode DataConnectMode) (*DataConn, error) {
	switch mode {
	case Passive:
		return c.openPassive(ctx)
	case Active:
		return c.openActive(ctx)
	default:
		return nil, illegalState("open data connection", "unknown mode "+mode.String())
	}
}

// openActive opens a data connection using active mode (PORT).
func (c *ControlChannel) openActive(ctx context.Context) (*DataConn, error) {
	local := c.LocalAddr()
	if local == nil {
		return nil, illegalState("PORT", "channel is "+c.State().String())
	}

	host, _, err := net.SplitHostPort(local.String())
	if err != nil {
		return nil, ioError("PORT", "failed to read local address", err)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return nil, ioError("PORT", "failed to parse local address "+host, err)
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return nil, protocolError("PORT", "active mode requires an IPv4 control connection")
	}

	listener, err := c.listenConfig.Listen(ctx, "tcp4", net.JoinHostPort(ip.String(), "0"))
	if err != nil {
		return nil, ioError("PORT", "failed to create listener", err)
	}

	_, portStr, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return nil, ioError("PORT", "failed to read listener address", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		listener.Close()
		return nil, ioError("PORT", "failed to parse listener port "+portStr, err)
	}

	parts, err := EncodeHostPort(ip, uint16(port))
	if err != nil {
		listener.Close()
		return nil, err
	}

	if _, err := c.Expect("PORT "+FormatHostPort(parts), CodeCommandOK); err != nil {
		listener.Close()
		return nil, err
	}

	c.logger.Debug("ftp data connection pending", "mode", Active, "addr", listener.Addr())

	return &DataConn{
		mode:     Active,
		listener: listener,
		timeout:  c.Timeout(),
		logger:   c.logger,
	}, nil
}

// openPassive opens a data connection using passive mode (PASV).
func (c *ControlChannel) openPassive(ctx context.Context) (*DataConn, error) {
	reply, err := c.Expect("PASV", CodeEnteringPassive)
	if err != nil {
		return nil, err
	}

	addr, err := ParsePASV(reply.Text)
	if err != nil {
		return nil, err
	}

	// If the server sends 0.0.0.0, we use the control connection address.
	if c.passiveHostFallback && addr.Addr().IsUnspecified() {
		addr = resolveDataAddr(addr, c.RemoteAddr())
	}

	timeout := c.Timeout()
	dialCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(dialCtx, "tcp", addr.String())
	if err != nil {
		return nil, ioError("PASV", "failed to connect to data port "+addr.String(), err)
	}

	c.logger.Debug("ftp data connection open", "mode", Passive, "addr", addr)

	return &DataConn{
		mode:    Passive,
		conn:    newDeadlineConn(conn, timeout),
		timeout: timeout,
		logger:  c.logger,
	}, nil
}

// resolveDataAddr replaces the address of a PASV reply with the host of the
// control connection, keeping the advertised port.
func resolveDataAddr(addr netip.AddrPort, control net.Addr) netip.AddrPort {
	if control == nil {
		return addr
	}
	host, _, err := net.SplitHostPort(control.String())
	if err != nil {
		return addr
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return addr
	}
	return netip.AddrPortFrom(ip.Unmap(), addr.Port())
}

// DataConn is a negotiated data connection. A passive DataConn is connected
// as soon as it is returned; an active one holds the listening socket until
// Accept is called.
type DataConn struct {
	mode    DataConnectMode
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	closed   bool
}

// Mode returns the mode the connection was negotiated with.
func (d *DataConn) Mode() DataConnectMode {
	return d.mode
}

// Addr returns the local listening address of a pending active connection,
// or the remote address of a connected one.
func (d *DataConn) Addr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.conn != nil:
		return d.conn.RemoteAddr()
	case d.listener != nil:
		return d.listener.Addr()
	default:
		return nil
	}
}

// Accept returns the connected data socket.
//
// For an active connection it blocks until the server connects, the timeout
// of the control channel elapses or ctx is done; cancelling ctx closes the
// listener. The listener is closed once a connection has been accepted.
// Subsequent calls return the same connection; after a cancelled Accept they
// fail with KindIllegalState.
func (d *DataConn) Accept(ctx context.Context) (net.Conn, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, illegalState("accept", "data connection is closed")
	}
	if d.conn != nil {
		conn := d.conn
		d.mu.Unlock()
		return conn, nil
	}
	listener := d.listener
	d.mu.Unlock()

	if listener == nil {
		return nil, illegalState("accept", "data connection was cancelled")
	}

	deadline := time.Time{}
	if d.timeout > 0 {
		deadline = time.Now().Add(d.timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	if dl, ok := listener.(interface{ SetDeadline(time.Time) error }); ok && !deadline.IsZero() {
		if err := dl.SetDeadline(deadline); err != nil {
			return nil, ioError("accept", "failed to set deadline", err)
		}
	}

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	raw, err := listener.Accept()
	stop()

	if err != nil {
		if ctx.Err() != nil {
			// the listener was closed by the cancellation
			d.mu.Lock()
			if d.listener == listener {
				d.listener = nil
			}
			d.mu.Unlock()
			return nil, ioError("accept", "data connection cancelled", ctx.Err())
		}
		return nil, ioError("accept", "failed to accept data connection", err)
	}

	conn := newDeadlineConn(raw, d.timeout)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		raw.Close()
		return nil, illegalState("accept", "data connection is closed")
	}
	d.conn = conn
	d.listener = nil
	d.mu.Unlock()

	if err := listener.Close(); err != nil {
		d.logger.Debug("failed to close data listener", "error", err)
	}
	d.logger.Debug("ftp data connection accepted", "remote", raw.RemoteAddr())

	return conn, nil
}

// Close releases the data socket and, for a pending active connection, the
// listener. Both are attempted; the last failure is returned.
func (d *DataConn) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return illegalState("close", "data connection is closed")
	}
	d.closed = true
	conn, listener := d.conn, d.listener
	d.conn, d.listener = nil, nil
	d.mu.Unlock()

	var last error
	if conn != nil {
		if err := conn.Close(); err != nil {
			last = err
		}
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			last = err
		}
	}

	if last != nil {
		return ioError("close", "failed to release data connection", last)
	}
	return nil
}
