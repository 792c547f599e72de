package monitoring

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const DEFAULT_CHECK_INTERVAL = 5 * time.Second

// Provider reports whether the network is currently reachable.
type Provider interface {
	CurrentStatus(ctx context.Context) bool
}

// Monitor polls a Provider and notifies subscribers when reachability flips.
// Reachable until the first check says otherwise.
type Monitor struct {
	provider Provider
	interval time.Duration

	reachable atomic.Bool

	mu     sync.Mutex
	nextID int
	subs   map[int]func(bool)
}

func NewMonitor(provider Provider, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DEFAULT_CHECK_INTERVAL
	}
	m := &Monitor{
		provider: provider,
		interval: interval,
		subs:     make(map[int]func(bool)),
	}
	m.reachable.Store(true)
	return m
}

func (m *Monitor) Reachable() bool {
	return m.reachable.Load()
}

// Subscribe registers fn for status transitions. fn runs on the checking
// goroutine and must not block.
func (m *Monitor) Subscribe(fn func(reachable bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Check probes once and reports the current status. Subscribers hear about it
// only when the status changed.
func (m *Monitor) Check(ctx context.Context) bool {
	now := m.provider.CurrentStatus(ctx)
	prev := m.reachable.Swap(now)
	if prev == now {
		return now
	}

	if now {
		slog.Info("[Connectivity] Network reachable again")
	} else {
		slog.Warn("[Connectivity] Network unreachable")
	}

	m.mu.Lock()
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(now)
	}
	return now
}

// Run checks immediately, then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
