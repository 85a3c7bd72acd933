package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"agenda/internal/config"
	"agenda/internal/intent"
	"agenda/internal/log"
	"agenda/internal/records/memory"
	"agenda/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil || cfg.Type != SQLiteBackend {
		t.Errorf("FromAppConfig() = %+v, %v", cfg, err)
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, Config{Type: MemoryBackend, DataDirectory: t.TempDir()}, log.Discard())
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Errorf("got %T, want *memory.Store", s)
	}

	s, err = NewStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "a.db")}, log.Discard())
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*storage.SQLiteRepository); !ok {
		t.Errorf("got %T, want *storage.SQLiteRepository", s)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewResolver(t *testing.T) {
	ctx := context.Background()
	base := config.Config{IntentTimeout: time.Second, IntentCacheTTL: time.Minute, IntentCacheSize: 4}

	disabled := base
	r, cleanup, err := NewResolver(ctx, &disabled, log.Discard())
	if err != nil || r != nil {
		t.Errorf("disabled resolver = %v, %v", r, err)
	}
	cleanup()

	mem := base
	mem.IntentURL = "http://127.0.0.1:1/resolve"
	mem.IntentCache = "memory"
	r, cleanup, err = NewResolver(ctx, &mem, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*intent.CachedResolver); !ok {
		t.Errorf("got %T, want *intent.CachedResolver", r)
	}
	cleanup()

	mr := miniredis.RunT(t)
	red := mem
	red.IntentCache = "redis"
	red.RedisAddr = mr.Addr()
	r, cleanup, err = NewResolver(ctx, &red, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*intent.CachedResolver); !ok {
		t.Errorf("got %T, want *intent.CachedResolver", r)
	}
	cleanup()

	none := mem
	none.IntentCache = "none"
	r, cleanup, err = NewResolver(ctx, &none, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*intent.HTTPResolver); !ok {
		t.Errorf("got %T, want *intent.HTTPResolver", r)
	}
	cleanup()
}
