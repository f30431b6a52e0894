package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "absent"); hit {
		t.Error("expected miss for absent key")
	}

	want := []byte(`{"cape":1234.5}`)
	if err := c.Set(ctx, "diagram:abc", want, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "diagram:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := c.Delete(ctx, "diagram:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "diagram:abc"); hit {
		t.Error("expected miss after Delete")
	}
	// Deleting again is fine.
	if err := c.Delete(ctx, "diagram:abc"); err != nil {
		t.Errorf("repeat Delete error: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "ephemeral"); hit {
		t.Error("expected expired entry to miss")
	}

	// Zero TTL means no expiration.
	if err := c.Set(ctx, "durable", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "durable"); !hit {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("sounding"))
	h2 := Hash([]byte("sounding"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("diagram")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	sk := k.SoundingKey([]byte("raw csv bytes"))
	if !strings.HasPrefix(sk, "sounding:") {
		t.Errorf("SoundingKey = %q, want sounding: prefix", sk)
	}

	base := DiagramKeyOpts{RotationDegrees: 45, PTop: 100, PBottom: 1050, Height: 100, Samples: 80}
	dk1 := k.DiagramKey("abc", base)
	dk2 := k.DiagramKey("abc", base)
	if dk1 != dk2 {
		t.Error("DiagramKey should be deterministic")
	}

	rotated := base
	rotated.RotationDegrees = 30
	if k.DiagramKey("abc", rotated) == dk1 {
		t.Error("different options should produce different keys")
	}

	thinned := base
	thinned.DryAdiabatThetas = []float64{300}
	if k.DiagramKey("abc", thinned) == dk1 {
		t.Error("different isopleth sets should produce different keys")
	}
	if k.DiagramKey("def", base) == dk1 {
		t.Error("different soundings should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "station:KOUN:")

	opts := DiagramKeyOpts{RotationDegrees: 45}
	got := scoped.DiagramKey("abc", opts)
	want := "station:KOUN:" + inner.DiagramKey("abc", opts)
	if got != want {
		t.Errorf("DiagramKey = %q, want %q", got, want)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if k := fallback.SoundingKey([]byte("x")); !strings.HasPrefix(k, "p:sounding:") {
		t.Errorf("SoundingKey = %q, want p:sounding: prefix", k)
	}
}
