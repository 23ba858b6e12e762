// internal/syncer/monitor.go
package syncer

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// Prober answers a single reachability question.
type Prober interface {
	Probe(ctx context.Context) bool
}

// DialProber probes by opening a TCP connection to the remote authority's
// address.
type DialProber struct {
	Addr    string
	Timeout time.Duration
}

// Probe reports whether the address accepted a connection.
func (p DialProber) Probe(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Monitor tracks remote reachability by probing on an interval and notifies
// subscribers about transitions.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]chan bool
}

// Statically assert that *Monitor implements the ConnectivityMonitor port.
var _ ports.ConnectivityMonitor = (*Monitor)(nil)

// NewMonitor creates a connectivity monitor. The initial state is offline
// until the first probe succeeds.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger.With(slog.String("component", "connectivity")),
		subs:     make(map[int]chan bool),
	}
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check probes once and records the outcome, notifying subscribers when the
// state changed.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.prober.Probe(ctx)

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	var subs []chan bool
	if changed {
		for _, ch := range m.subs {
			subs = append(subs, ch)
		}
	}
	m.mu.Unlock()

	if changed {
		m.logger.InfoContext(ctx, "connectivity changed", slog.Bool("online", online))
		for _, ch := range subs {
			// Non-blocking: a slow subscriber drops intermediate transitions
			// and still observes the latest state via Online.
			select {
			case ch <- online:
			default:
			}
		}
	}
	return online
}

// Online returns the last observed reachability state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers for transition events.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 8)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
	return ch, cancel
}
