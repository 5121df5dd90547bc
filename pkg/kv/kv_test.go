package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestBolt(t *testing.T) *Bolt {
	t.Helper()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "effects.db"))
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// exerciseStore runs the shared contract against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "tool:lure_gold"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "tool:lure_gold", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "tool:lure_gold")
	if err != nil || got != "2026-01-01T00:00:00Z" {
		t.Fatalf("Get after Set: %q %v", got, err)
	}
	if err := s.Set(ctx, "tool:lure_gold", "2026-01-02T00:00:00Z"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := s.Get(ctx, "tool:lure_gold"); got != "2026-01-02T00:00:00Z" {
		t.Fatalf("overwrite not visible: %q", got)
	}
	if err := s.Delete(ctx, "tool:lure_gold"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "tool:lure_gold"); err != nil {
		t.Fatalf("Delete missing should be a no-op: %v", err)
	}
	if _, err := s.Get(ctx, "tool:lure_gold"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
	}
}

func TestBoltContract(t *testing.T) {
	exerciseStore(t, newTestBolt(t))
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.db")
	ctx := context.Background()

	b, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	b.Close()

	b2, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()
	if got, err := b2.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("after reopen: %q %v", got, err)
	}
}

func TestBoltCancelledContext(t *testing.T) {
	b := newTestBolt(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Set with cancelled ctx: got %v", err)
	}
}

func TestOpenBoltRequiresPath(t *testing.T) {
	if _, err := OpenBolt("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "memcached"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenDefaultsToBolt(t *testing.T) {
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*Bolt); !ok {
		t.Fatalf("default backend: got %T, want *Bolt", s)
	}
}

// TestRedisContract needs a live server; set CRITTERDEX_TEST_REDIS to run it.
func TestRedisContract(t *testing.T) {
	addr := os.Getenv("CRITTERDEX_TEST_REDIS")
	if addr == "" {
		t.Skip("CRITTERDEX_TEST_REDIS not set")
	}
	r, err := OpenRedis(addr, "critterdex-test")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer r.Close()
	exerciseStore(t, r)
}
