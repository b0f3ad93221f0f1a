package connectivity

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ─── Manual Monitor ─────────────────────────────────────────────────────────

func TestManualInitialState(t *testing.T) {
	if NewManual(true).Online() != true {
		t.Error("NewManual(true).Online() = false")
	}
	if NewManual(false).Online() != false {
		t.Error("NewManual(false).Online() = true")
	}
}

func TestManualEdgeTriggered(t *testing.T) {
	m := NewManual(false)

	var transitions []bool
	m.Subscribe(func(online bool) { transitions = append(transitions, online) })

	m.SetOnline(false) // no transition
	m.SetOnline(true)  // offline → online
	m.SetOnline(true)  // no transition
	m.SetOnline(false) // online → offline

	if len(transitions) != 2 {
		t.Fatalf("got %d notifications, want 2: %v", len(transitions), transitions)
	}
	if !transitions[0] || transitions[1] {
		t.Errorf("transitions = %v, want [true false]", transitions)
	}
}

func TestManualMultipleSubscribers(t *testing.T) {
	m := NewManual(false)
	var a, b int32
	m.Subscribe(func(bool) { atomic.AddInt32(&a, 1) })
	m.Subscribe(func(bool) { atomic.AddInt32(&b, 1) })

	m.SetOnline(true)

	if a != 1 || b != 1 {
		t.Errorf("subscriber calls = (%d, %d), want (1, 1)", a, b)
	}
}

// ─── Probing Monitor ────────────────────────────────────────────────────────

func TestProberDetectsTransitions(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe method = %s, want HEAD", r.Method)
		}
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	p := NewProber(ProberConfig{
		HealthURL: srv.URL,
		Interval:  10 * time.Millisecond,
		Timeout:   time.Second,
	})

	events := make(chan bool, 16)
	p.Subscribe(func(online bool) { events <- online })

	p.Start()
	defer p.Stop()

	waitFor := func(want bool) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case got := <-events:
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for online=%v", want)
			}
		}
	}

	waitFor(true) // starts offline, first probe flips online
	if !p.Online() {
		t.Error("Online() = false after healthy probe")
	}

	healthy.Store(false)
	waitFor(false)

	healthy.Store(true)
	waitFor(true)
}

func TestProberStartsOffline(t *testing.T) {
	p := NewProber(DefaultProberConfig("http://127.0.0.1:0/health"))
	if p.Online() {
		t.Error("prober should report offline before any probe")
	}
}
