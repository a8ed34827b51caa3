package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, maxAge time.Duration) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "cache.db"), maxAge)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorePutGet(t *testing.T) {
	s := openTestStore(t, 0)

	if _, ok, err := s.Get("transcribe", "k1"); err != nil || ok {
		t.Fatalf("Get() on empty store = %v, %v", ok, err)
	}

	if err := s.Put("transcribe", "k1", []byte("v1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := s.Get("transcribe", "k1")
	if err != nil || !ok || string(got) != "v1" {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}

	// Kinds are separate namespaces
	if _, ok, _ := s.Get("synthesize", "k1"); ok {
		t.Error("Expected miss for other kind")
	}

	// Overwrite
	s.Put("transcribe", "k1", []byte("v2"))
	got, _, _ = s.Get("transcribe", "k1")
	if string(got) != "v2" {
		t.Errorf("Get() after overwrite = %q, want v2", got)
	}
}

func TestStoreStatsAndClear(t *testing.T) {
	s := openTestStore(t, 0)

	s.Put("transcribe", "a", []byte("12345"))
	s.Put("transcribe", "b", []byte("123"))
	s.Put("synthesize", "a", []byte("1"))

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats["transcribe"].Entries != 2 || stats["transcribe"].Bytes != 8 {
		t.Errorf("transcribe stats = %+v", stats["transcribe"])
	}
	if stats["synthesize"].Entries != 1 {
		t.Errorf("synthesize stats = %+v", stats["synthesize"])
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	stats, _ = s.Stats()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats after Clear, got %v", stats)
	}
}

func TestStoreMaxAge(t *testing.T) {
	s := openTestStore(t, time.Hour)

	if _, err := s.db.Exec(`INSERT INTO responses (kind, key, value, created_at) VALUES ('t', 'old', x'01', ?)`,
		time.Now().Add(-2*time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("t", "old"); ok {
		t.Error("Expected expired entry to be ignored")
	}

	s.Put("t", "new", []byte{1})
	if _, ok, _ := s.Get("t", "new"); !ok {
		t.Error("Expected fresh entry to be returned")
	}
}
