package cli

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(base, appName); dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestCacheDirHomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	cch, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	defer cch.Close()

	ctx := context.Background()
	if err := cch.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := cch.Get(ctx, "k"); err != nil || ok {
		t.Errorf("disabled cache should always miss, got ok=%v err=%v", ok, err)
	}
}

func TestNewCacheWritesToCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cch, err := newCache(false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	defer cch.Close()

	ctx := context.Background()
	if err := cch.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := cch.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(data) != "v" {
		t.Errorf("Get = %q, want %q", data, "v")
	}
}
