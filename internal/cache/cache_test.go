package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arabah/arabah-cli/internal/cache"
)

type profile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestFileStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s := cache.NewFileStore(t.TempDir(), "https://api.arabah.app")

	if err := s.Put(ctx, "profile", profile{ID: 7, Name: "Sara"}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got profile
	ok, err := s.Get(ctx, "profile", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ID != 7 || got.Name != "Sara" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestFileStore_ExpiredTTL(t *testing.T) {
	ctx := context.Background()
	s := cache.NewFileStore(t.TempDir(), "https://api.arabah.app")

	if err := s.Put(ctx, "profile", profile{ID: 1}, time.Millisecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got profile
	ok, err := s.Get(ctx, "profile", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestFileStore_MissOnEmpty(t *testing.T) {
	s := cache.NewFileStore(t.TempDir(), "https://api.arabah.app")

	var got profile
	ok, err := s.Get(context.Background(), "profile", &got)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := cache.NewFileStore(t.TempDir(), "https://api.arabah.app")

	_ = s.Put(ctx, "profile", profile{ID: 1}, 0)
	_ = s.Put(ctx, "search_filters", map[string]string{"sort_by": "price"}, 0)

	if err := s.Delete(ctx, "profile", "search_filters", "never-written"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got profile
	if ok, _ := s.Get(ctx, "profile", &got); ok {
		t.Fatal("expected cache miss after delete")
	}
}

func TestFileStore_ScopedByServer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	prod := cache.NewFileStore(dir, "https://api.arabah.app")
	staging := cache.NewFileStore(dir, "https://staging.arabah.app")

	_ = prod.Put(ctx, "profile", profile{Name: "prod"}, 0)
	_ = staging.Put(ctx, "profile", profile{Name: "staging"}, 0)

	var p, s profile
	_, _ = prod.Get(ctx, "profile", &p)
	_, _ = staging.Get(ctx, "profile", &s)

	if p.Name != "prod" || s.Name != "staging" {
		t.Fatalf("servers should have separate caches: %q %q", p.Name, s.Name)
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := cache.NewFileStore(dir, "https://api.arabah.app")

	_ = s.Put(ctx, "profile", profile{ID: 1}, 0)
	_ = s.Put(ctx, "search_filters", []string{"b"}, 0)

	cache.ClearAll(dir)

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 0 {
		t.Fatalf("expected no cache files after ClearAll, got %d", len(files))
	}
}

func TestFileStore_DisabledByEnv(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Setenv("ARABAH_NO_CACHE", "1")

	s := cache.NewFileStore(dir, "https://api.arabah.app")
	if err := s.Put(ctx, "profile", profile{ID: 1}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got profile
	if ok, _ := s.Get(ctx, "profile", &got); ok {
		t.Fatal("expected cache miss when disabled via env")
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Fatal("expected no files written when cache disabled")
	}
}
