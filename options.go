package ftp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// DefaultTimeout is the read/write timeout used when WithTimeout is not given.
const DefaultTimeout = 30 * time.Second

// Option is a functional option for configuring a ControlChannel.
type Option func(*ControlChannel) error

// Dialer establishes control and passive data connections.
// *net.Dialer satisfies it; a proxy dialer can be plugged in with
// WithCustomDialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// WithTimeout sets the timeout for connecting and for every blocking read or
// write on the control and data connections. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *ControlChannel) error {
		if timeout < 0 {
			return fmt.Errorf("negative timeout %v", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithLogger enables debug logging using the provided logger.
// Commands and replies are logged at debug level; the argument of PASS is
// always masked.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	cc, _ := ftp.Dial("ftp.example.com:21", ftp.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *ControlChannel) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithDialer sets a custom net.Dialer for establishing connections.
// This can be used to configure source addresses, keep-alive settings, etc.
func WithDialer(dialer *net.Dialer) Option {
	if dialer == nil {
		return WithCustomDialer(nil)
	}
	return WithCustomDialer(dialer)
}

// WithCustomDialer sets the Dialer used for the control connection and for
// passive data connections.
func WithCustomDialer(dialer Dialer) Option {
	return func(c *ControlChannel) error {
		if dialer == nil {
			return fmt.Errorf("nil dialer")
		}
		c.dialer = dialer
		return nil
	}
}

// WithListenConfig sets the ListenConfig used to open the local listener in
// active mode.
func WithListenConfig(lc *net.ListenConfig) Option {
	return func(c *ControlChannel) error {
		if lc == nil {
			return fmt.Errorf("nil listen config")
		}
		c.listenConfig = lc
		return nil
	}
}

// WithPassiveHostFallback controls what happens when a PASV reply advertises
// 0.0.0.0. When enabled (the default) the data connection goes to the host of
// the control connection instead.
func WithPassiveHostFallback(enabled bool) Option {
	return func(c *ControlChannel) error {
		c.passiveHostFallback = enabled
		return nil
	}
}
