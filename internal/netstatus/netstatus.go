// Package netstatus answers "is the network reachable?" for tiers that need
// remote services.
package netstatus

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Signal reports network reachability.
type Signal interface {
	Online(ctx context.Context) bool
}

// Static is a fixed reachability signal.
type Static bool

// Online returns the fixed value.
func (s Static) Online(context.Context) bool { return bool(s) }

// DefaultCheckAddr is a well-known, highly available TCP endpoint.
const DefaultCheckAddr = "1.1.1.1:443"

// CheckerConfig configures a Checker.
type CheckerConfig struct {
	// Addrs are dialed in order; the first success means online.
	Addrs []string

	// Timeout bounds each dial.
	Timeout time.Duration

	// TTL is how long a result is reused before dialing again.
	TTL time.Duration
}

// DefaultCheckerConfig returns recommended defaults.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		Addrs:   []string{DefaultCheckAddr},
		Timeout: 2 * time.Second,
		TTL:     30 * time.Second,
	}
}

// Checker dials TCP endpoints to decide reachability. Results are cached for
// TTL and concurrent callers share a single in-flight dial.
type Checker struct {
	cfg    CheckerConfig
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	now    func() time.Time
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.Mutex
	online  bool
	checked time.Time
}

// NewChecker creates a Checker.
func NewChecker(cfg CheckerConfig, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultCheckerConfig()
	if len(cfg.Addrs) == 0 {
		cfg.Addrs = def.Addrs
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	var d net.Dialer
	return &Checker{cfg: cfg, dial: d.DialContext, now: time.Now, logger: logger}
}

// Online returns the cached result if fresh, otherwise dials. A result
// produced under a cancelled context is returned but not cached.
func (p *Checker) Online(ctx context.Context) bool {
	p.mu.Lock()
	if !p.checked.IsZero() && p.now().Sub(p.checked) < p.cfg.TTL {
		online := p.online
		p.mu.Unlock()
		return online
	}
	p.mu.Unlock()

	v, _, _ := p.group.Do("dial", func() (any, error) {
		online := p.reachable(ctx)
		if ctx.Err() != nil {
			return online, nil
		}
		p.mu.Lock()
		p.online = online
		p.checked = p.now()
		p.mu.Unlock()
		return online, nil
	})
	return v.(bool)
}

// Invalidate forces the next Online call to dial.
func (p *Checker) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checked = time.Time{}
}

func (p *Checker) reachable(ctx context.Context) bool {
	for _, addr := range p.cfg.Addrs {
		dialCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		conn, err := p.dial(dialCtx, "tcp", addr)
		cancel()
		if err == nil {
			conn.Close()
			return true
		}
		p.logger.Debug("network check failed", "addr", addr, "error", err)
	}
	return false
}
