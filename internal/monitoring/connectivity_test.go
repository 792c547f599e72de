package monitoring

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

type scriptedProvider struct {
	mu       sync.Mutex
	statuses []bool
}

func (p *scriptedProvider) CurrentStatus(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.statuses) == 0 {
		return true
	}
	s := p.statuses[0]
	p.statuses = p.statuses[1:]
	return s
}

func TestMonitorNotifiesOnTransitionOnly(t *testing.T) {
	p := &scriptedProvider{statuses: []bool{true, false, false, true, true}}
	m := NewMonitor(p, time.Second)

	var got []bool
	m.Subscribe(func(r bool) { got = append(got, r) })

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m.Check(ctx)
	}

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Fatalf("notifications = %v, want [false true]", got)
	}
	if !m.Reachable() {
		t.Error("Reachable = false, want true")
	}
}

func TestMonitorStartsReachable(t *testing.T) {
	m := NewMonitor(StaticProvider(false), 0)
	if !m.Reachable() {
		t.Fatal("new monitor should assume reachable")
	}
	if m.interval != DEFAULT_CHECK_INTERVAL {
		t.Errorf("interval = %v", m.interval)
	}
}

func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(StaticProvider(false), time.Second)

	calls := 0
	unsubscribe := m.Subscribe(func(bool) { calls++ })
	unsubscribe()

	m.Check(context.Background())
	if calls != 0 {
		t.Fatalf("calls = %d after unsubscribe", calls)
	}
	if m.Reachable() {
		t.Error("Reachable should follow the provider even without subscribers")
	}
}

func TestMonitorRunChecksImmediately(t *testing.T) {
	m := NewMonitor(StaticProvider(false), time.Hour)

	notified := make(chan bool, 1)
	m.Subscribe(func(r bool) { notified <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case r := <-notified:
		if r {
			t.Fatal("expected unreachable notification")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not check on start")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestTCPProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	if !NewTCPProbe(addr).CurrentStatus(context.Background()) {
		t.Fatal("probe against listening socket should succeed")
	}

	ln.Close()
	p := NewTCPProbe(addr)
	p.Timeout = 500 * time.Millisecond
	if p.CurrentStatus(context.Background()) {
		t.Fatal("probe against closed socket should fail")
	}
}
