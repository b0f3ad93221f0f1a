package kvstore

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ─── SQLite Store ───────────────────────────────────────────────────────────

func TestSQLiteSetGet(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("queue", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	v, ok, err := s.Get("queue")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok {
		t.Fatal("Get() found = false, want true")
	}
	if v != `[{"id":"a"}]` {
		t.Errorf("Get() = %q, want %q", v, `[{"id":"a"}]`)
	}
}

func TestSQLiteGetAbsent(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get(nonexistent) error: %v", err)
	}
	if ok {
		t.Error("Get(nonexistent) found = true, want false")
	}
}

func TestSQLiteSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "first")
	if err := s.Set("k", "second"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	v, _, _ := s.Get("k")
	if v != "second" {
		t.Errorf("Get() after overwrite = %q, want %q", v, "second")
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("key should be gone after Delete")
	}

	// Deleting an absent key is a no-op
	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete(absent) error: %v", err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	if err := s.Set("queue", "[]"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()

	v, ok, err := s2.Get("queue")
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = (%q, %v, %v), want found", v, ok, err)
	}
	if v != "[]" {
		t.Errorf("Get() after reopen = %q, want %q", v, "[]")
	}
}

// ─── Memory Store ───────────────────────────────────────────────────────────

func TestMemoryFailureInjection(t *testing.T) {
	m := NewMemory()
	m.Set("k", "before")

	boom := errors.New("quota exceeded")
	m.FailSets(boom)
	if err := m.Set("k", "after"); !errors.Is(err, boom) {
		t.Errorf("Set() with injected failure = %v, want %v", err, boom)
	}

	// Previous value intact
	v, _, _ := m.Get("k")
	if v != "before" {
		t.Errorf("value after failed Set = %q, want %q", v, "before")
	}

	m.FailSets(nil)
	if err := m.Set("k", "after"); err != nil {
		t.Errorf("Set() after heal error: %v", err)
	}
	if m.SetCount() != 2 {
		t.Errorf("SetCount() = %d, want 2", m.SetCount())
	}
}
