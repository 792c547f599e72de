package monitoring

import (
	"context"
	"log/slog"
	"net"
	"time"
)

const DEFAULT_PROBE_ADDR = "1.1.1.1:53"

// TCPProbe treats the network as reachable when a TCP connection to Addr can
// be opened within Timeout.
type TCPProbe struct {
	Addr    string
	Timeout time.Duration
}

func NewTCPProbe(addr string) *TCPProbe {
	if addr == "" {
		addr = DEFAULT_PROBE_ADDR
	}
	return &TCPProbe{Addr: addr, Timeout: 3 * time.Second}
}

func (p *TCPProbe) CurrentStatus(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		slog.Debug("[Connectivity] Probe failed", slog.String("addr", p.Addr), slog.String("error", err.Error()))
		return false
	}
	conn.Close()
	return true
}

// StaticProvider always reports the same status.
type StaticProvider bool

func (s StaticProvider) CurrentStatus(context.Context) bool {
	return bool(s)
}
