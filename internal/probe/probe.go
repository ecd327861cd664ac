// Package probe checks FTP endpoints: it connects, validates the greeting,
// optionally logs in and negotiates a data connection in the configured mode.
// Many endpoints are probed concurrently on a bounded worker pool.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	ftp "github.com/gonzalop/ftpcontrol"
	"github.com/gonzalop/ftpcontrol/internal/ratelimit"
)

const (
	// DefaultWorkers is the pool size used when Config.Workers is not set.
	DefaultWorkers = 10

	// DefaultTimeout is the per-operation timeout used when Config.Timeout is
	// not set.
	DefaultTimeout = 2 * time.Second
)

// Config configures a Prober.
type Config struct {
	// Workers is the number of endpoints probed at once.
	Workers int

	// Timeout applies to connecting and to every command.
	Timeout time.Duration

	// Rate caps new connections per second. Zero means unlimited.
	Rate float64

	// Mode selects active or passive data connections.
	Mode ftp.DataConnectMode

	// Encoding of the control channel text. Nil means UTF-8/ASCII.
	Encoding encoding.Encoding

	// User and Password are sent with USER/PASS when User is not empty.
	User     string
	Password string

	Logger *slog.Logger
}

// Result is the outcome of probing one endpoint.
type Result struct {
	Host string
	Port int

	// Banner is the text of the 220 greeting.
	Banner string

	// DataAddr is the negotiated data address: the server's listener in
	// passive mode, ours in active mode.
	DataAddr string

	Elapsed time.Duration
	Err     error
}

// OK reports whether the probe succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// String renders the result as a single line.
func (r Result) String() string {
	addr := net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	if r.Err != nil {
		return fmt.Sprintf("%s FAIL (%v) %v", addr, r.Elapsed.Round(time.Millisecond), r.Err)
	}
	return fmt.Sprintf("%s OK (%v) data=%s banner=%q", addr, r.Elapsed.Round(time.Millisecond), r.DataAddr, r.Banner)
}

// Prober probes FTP endpoints.
type Prober struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a Prober, filling unset fields of cfg with defaults.
func New(cfg Config) *Prober {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prober{cfg: cfg, logger: logger}
}

type endpoint struct {
	host string
	port int
}

// Run probes every host/port combination and returns the results sorted by
// host and port. If ctx is cancelled, the endpoints probed so far are
// returned together with the context error.
func (p *Prober) Run(ctx context.Context, hosts []string, ports []int) ([]Result, error) {
	var (
		mu      sync.Mutex
		results []Result
		wg      sync.WaitGroup
	)

	pool, err := ants.NewPoolWithFunc(p.cfg.Workers, func(arg interface{}) {
		defer wg.Done()
		r := p.probe(ctx, arg.(endpoint))

		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}, ants.WithPanicHandler(func(v interface{}) {
		p.logger.Error("probe panicked", "panic", v)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create worker pool")
	}
	defer pool.Release()

	limiter := ratelimit.New(p.cfg.Rate)

submit:
	for _, host := range hosts {
		for _, port := range ports {
			if err := limiter.Wait(ctx); err != nil {
				break submit
			}
			wg.Add(1)
			if err := pool.Invoke(endpoint{host: host, port: port}); err != nil {
				wg.Done()
				wg.Wait()
				return nil, errors.Wrap(err, "failed to submit probe")
			}
		}
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Host != results[j].Host {
			return results[i].Host < results[j].Host
		}
		return results[i].Port < results[j].Port
	})

	return results, ctx.Err()
}

// probe checks a single endpoint.
func (p *Prober) probe(ctx context.Context, ep endpoint) (r Result) {
	start := time.Now()
	r = Result{Host: ep.host, Port: ep.port}
	defer func() {
		r.Elapsed = time.Since(start)
		p.logger.Debug("probe finished", "host", r.Host, "port", r.Port, "ok", r.OK(), "elapsed", r.Elapsed)
	}()

	addr := net.JoinHostPort(ep.host, strconv.Itoa(ep.port))
	opts := []ftp.Option{
		ftp.WithTimeout(p.cfg.Timeout),
		ftp.WithLogger(p.logger.With("addr", addr)),
	}
	if p.cfg.Encoding != nil {
		opts = append(opts, ftp.WithEncoding(p.cfg.Encoding))
	}

	cc, err := ftp.DialContext(ctx, addr, opts...)
	if err != nil {
		r.Err = err
		return r
	}
	defer func() {
		if err := cc.Quit(); err != nil {
			p.logger.Debug("quit failed", "addr", addr, "error", err)
		}
	}()

	r.Banner = cc.Banner().Text

	if p.cfg.User != "" {
		if err := login(cc, p.cfg.User, p.cfg.Password); err != nil {
			r.Err = err
			return r
		}
	}

	dc, err := cc.OpenDataConnection(ctx, p.cfg.Mode)
	if err != nil {
		r.Err = err
		return r
	}
	if a := dc.Addr(); a != nil {
		r.DataAddr = a.String()
	}
	if err := dc.Close(); err != nil {
		p.logger.Debug("failed to close data connection", "addr", addr, "error", err)
	}

	return r
}
