package ftp

import (
	"net"
	"sync/atomic"
	"time"
)

// deadlineConn wraps a net.Conn and sets a read/write deadline before every
// operation. The timeout can be changed while the connection is in use.
type deadlineConn struct {
	net.Conn
	timeout atomic.Int64
}

func newDeadlineConn(conn net.Conn, timeout time.Duration) *deadlineConn {
	c := &deadlineConn{Conn: conn}
	c.timeout.Store(int64(timeout))
	return c
}

func (c *deadlineConn) setTimeout(timeout time.Duration) {
	c.timeout.Store(int64(timeout))
}

func (c *deadlineConn) Read(b []byte) (n int, err error) {
	if timeout := time.Duration(c.timeout.Load()); timeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (n int, err error) {
	if timeout := time.Duration(c.timeout.Load()); timeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(b)
}

// closeRead shuts down the reading side if the connection supports it.
func (c *deadlineConn) closeRead() error {
	if cr, ok := c.Conn.(interface{ CloseRead() error }); ok {
		return cr.CloseRead()
	}
	return nil
}
