package store

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "biome.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run destructively.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, ok, err := s2.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, filepath.Join("biome", "biome.db")) {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value operations
// ============================================================

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Fatalf("expected absent key, got %q ok=%v", v, ok)
	}
}

func TestValueNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Value("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyTasks, "[]")
	s.Set(KeyTasks, `[{"id":"a"}]`)

	v, err := s.Value(KeyTasks)
	if err != nil {
		t.Fatal(err)
	}
	if v != `[{"id":"a"}]` {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	s.Set("a", "1")
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Fatal("key should be gone")
	}
	// Removing a missing key is not an error.
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
}

func TestKeysSorted(t *testing.T) {
	s := newTestStore(t)
	s.Set("b", "1")
	s.Set("a", "2")

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestKeysEmpty(t *testing.T) {
	s := newTestStore(t)
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if keys != nil {
		t.Fatalf("expected nil slice, got %v", keys)
	}
}

// ============================================================
// JSON helpers
// ============================================================

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoadJSON(t *testing.T) {
	s := newTestStore(t)
	if err := Save(s, "doc", doc{Name: "x", Count: 3}, nil); err != nil {
		t.Fatal(err)
	}
	got := Load(s, "doc", doc{}, nil)
	if got.Name != "x" || got.Count != 3 {
		t.Fatalf("unexpected doc %+v", got)
	}
}

func TestLoadMissingUsesFallback(t *testing.T) {
	s := newTestStore(t)
	got := Load(s, "doc", doc{Name: "default"}, nil)
	if got.Name != "default" {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestLoadMalformedUsesFallbackAndLogs(t *testing.T) {
	s := newTestStore(t)
	s.Set("doc", "{not json")

	var buf bytes.Buffer
	got := Load(s, "doc", doc{Name: "default"}, bufferLogger(&buf))
	if got.Name != "default" {
		t.Fatalf("expected fallback, got %+v", got)
	}
	if !strings.Contains(buf.String(), "malformed") || !strings.Contains(buf.String(), "key=doc") {
		t.Fatalf("expected warning in log, got %q", buf.String())
	}
}

func TestLoadWrongShapeUsesFallback(t *testing.T) {
	s := newTestStore(t)
	s.Set("doc", `"a string, not an object"`)

	got := Load(s, "doc", doc{Count: 7}, bufferLogger(&bytes.Buffer{}))
	if got.Count != 7 {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingKV) Set(string, string) error         { return errors.New("disk on fire") }
func (failingKV) Remove(string) error              { return errors.New("disk on fire") }

func TestLoadReadErrorUsesFallback(t *testing.T) {
	var buf bytes.Buffer
	got := Load(failingKV{}, "doc", doc{Count: 1}, bufferLogger(&buf))
	if got.Count != 1 {
		t.Fatalf("expected fallback, got %+v", got)
	}
	if !strings.Contains(buf.String(), "disk on fire") {
		t.Fatalf("expected read error in log, got %q", buf.String())
	}
}

func TestSaveWriteErrorIsReturned(t *testing.T) {
	var buf bytes.Buffer
	err := Save(failingKV{}, "doc", doc{}, bufferLogger(&buf))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error log, got %q", buf.String())
	}
}
