// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline tracks network connectivity.
//
// A Monitor probes reachability of the chat-completion endpoint on an
// interval and reports transitions. The UI blocks interactive sends
// while offline is reported and re-enables immediately on reconnection;
// in-memory state accumulated while offline is untouched.
package offline

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// ErrOffline is returned by guards when no connectivity is reported.
var ErrOffline = errors.New("no network connectivity")

// Probe reports whether the network is reachable right now.
type Probe func(ctx context.Context) bool

// =============================================================================
// MONITOR
// =============================================================================

// Options configures a Monitor.
type Options struct {
	// ProbeHost is the "host:port" dialed to test connectivity.
	ProbeHost string
	// Interval between probes.
	Interval time.Duration
	// ProbeTimeout bounds one probe attempt.
	ProbeTimeout time.Duration
	// Probe overrides the default dial-based probe. Used by tests.
	Probe Probe
	// OnChange is invoked on every online/offline transition, from the
	// monitor goroutine.
	OnChange func(online bool)
}

// Monitor watches connectivity on an interval.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	probe    Probe
	interval time.Duration
	onChange func(online bool)
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewMonitor creates a monitor. It starts optimistic (online) until the
// first probe says otherwise.
func NewMonitor(opts Options) *Monitor {
	if opts.ProbeHost == "" {
		opts.ProbeHost = "generativelanguage.googleapis.com:443"
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	probe := opts.Probe
	if probe == nil {
		probe = dialProbe(opts.ProbeHost, opts.ProbeTimeout)
	}
	return &Monitor{
		online:   true,
		probe:    probe,
		interval: opts.Interval,
		onChange: opts.OnChange,
	}
}

// dialProbe tests connectivity with a TCP dial.
func dialProbe(host string, timeout time.Duration) Probe {
	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// Start launches the probe loop. The first probe runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check runs one probe and fires the transition callback on change.
func (m *Monitor) check(ctx context.Context) {
	online := m.probe(ctx)

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	cb := m.onChange
	m.mu.Unlock()

	if changed && cb != nil {
		cb(online)
	}
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// CheckOnline returns ErrOffline when the monitor last observed no
// connectivity. Rendering continues offline; only interactive sends are
// gated on this.
func (m *Monitor) CheckOnline() error {
	if !m.Online() {
		return ErrOffline
	}
	return nil
}

// StatusBadge returns a formatted badge for the UI, or "" when online.
func (m *Monitor) StatusBadge() string {
	if !m.Online() {
		return "[OFFLINE]"
	}
	return ""
}
