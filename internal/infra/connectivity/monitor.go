// Package connectivity reports whether the remote endpoint is reachable and
// notifies subscribers on transitions. The queue subscribes to became-online
// to trigger a flush; everything else reads the current flag.
package connectivity

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kobo-ledger/kobo/internal/infra/observability"
)

// Monitor exposes the current connectivity state and transition events.
// Callbacks are edge-triggered: fired once per transition, not per probe.
type Monitor interface {
	// Online reports the last known state.
	Online() bool

	// Subscribe registers fn to be called on every transition with the new
	// state. fn runs on the monitor's goroutine and must not block long.
	Subscribe(fn func(online bool))
}

// ─── Manual Monitor ─────────────────────────────────────────────────────────

// Manual is a Monitor flipped by hand. It backs deterministic tests and
// deployments without a health URL (where state is assumed, not probed).
type Manual struct {
	mu     sync.Mutex
	online bool
	subs   []func(bool)
}

// NewManual creates a monitor with the given initial state.
func NewManual(online bool) *Manual {
	return &Manual{online: online}
}

// Online reports the current state.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a transition callback.
func (m *Manual) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// SetOnline sets the state, notifying subscribers only on a transition.
func (m *Manual) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	observability.SetConnectivity(online)
	for _, fn := range subs {
		fn(online)
	}
}

// ─── Probing Monitor ────────────────────────────────────────────────────────

// ProberConfig controls the probing monitor.
type ProberConfig struct {
	HealthURL string        // URL to HEAD
	Interval  time.Duration // time between probes (default: 30s)
	Timeout   time.Duration // per-probe timeout (default: 5s)
}

// DefaultProberConfig returns safe probing defaults.
func DefaultProberConfig(healthURL string) ProberConfig {
	return ProberConfig{
		HealthURL: healthURL,
		Interval:  30 * time.Second,
		Timeout:   5 * time.Second,
	}
}

// Prober is a Monitor that periodically HEADs a health URL.
// Until the first probe completes the state is offline — "unconfirmed"
// routes captures through the queue rather than risking a lost submit.
type Prober struct {
	mu     sync.Mutex
	cfg    ProberConfig
	client *http.Client
	online bool
	subs   []func(bool)
	stop   chan struct{}
	done   chan struct{}
}

// NewProber creates a probing monitor. Call Start to begin probing.
func NewProber(cfg ProberConfig) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Prober{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Online reports the last probed state.
func (p *Prober) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Subscribe registers a transition callback.
func (p *Prober) Subscribe(fn func(online bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Start probes once immediately, then on every interval tick until Stop.
func (p *Prober) Start() {
	go func() {
		defer close(p.done)
		p.probe()
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.probe()
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop halts probing and waits for the probe goroutine to exit.
func (p *Prober) Stop() {
	close(p.stop)
	<-p.done
}

// probe HEADs the health URL and flips state on transitions.
func (p *Prober) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	online := false
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.cfg.HealthURL, nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close()
			online = resp.StatusCode < 500
		}
	}

	p.mu.Lock()
	if p.online == online {
		p.mu.Unlock()
		return
	}
	p.online = online
	subs := make([]func(bool), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	log.Printf("[connectivity] transition: online=%v", online)
	observability.SetConnectivity(online)
	for _, fn := range subs {
		fn(online)
	}
}
