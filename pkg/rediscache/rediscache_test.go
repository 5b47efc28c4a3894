package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, prefix string) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+mr.Addr(), prefix, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, "", "test:", time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Enabled() {
		t.Fatal("cache without URL should be disabled")
	}
	gen, err := c.Generation(ctx)
	if err != nil || gen != 0 {
		t.Errorf("Generation = %d, %v", gen, err)
	}
	if err := c.SetAt(ctx, gen, "k", map[string]int{"a": 1}); err != nil {
		t.Errorf("SetAt: %v", err)
	}
	var out map[string]int
	found, err := c.GetAt(ctx, gen, "k", &out)
	if err != nil || found {
		t.Errorf("GetAt = %v, %v; want miss", found, err)
	}
	if err := c.Purge(ctx); err != nil {
		t.Errorf("Purge: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "http://nope", "x:", time.Minute, zap.NewNop()); err == nil {
		t.Fatal("expected URL parse error")
	}
}

func TestSetAtGetAt(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, "test:")

	gen, err := c.Generation(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetAt(ctx, gen, "sku:A", map[string]float64{"score": 0.5}); err != nil {
		t.Fatalf("SetAt: %v", err)
	}
	var out map[string]float64
	found, err := c.GetAt(ctx, gen, "sku:A", &out)
	if err != nil || !found || out["score"] != 0.5 {
		t.Fatalf("GetAt = %v, %v, %v", out, found, err)
	}
	if ttl := mr.TTL("test:0:sku:A"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}
}

func TestPurgeRetiresGeneration(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, "test:")

	before, _ := c.Generation(ctx)
	if err := c.SetAt(ctx, before, "sku:A", "old"); err != nil {
		t.Fatal(err)
	}
	mr.Set("other:0:sku:A", "kept")

	if err := c.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	after, _ := c.Generation(ctx)
	if after == before {
		t.Fatal("Purge did not advance the generation")
	}
	if mr.Exists("test:0:sku:A") {
		t.Error("retired key not deleted")
	}
	if !mr.Exists("other:0:sku:A") {
		t.Error("purge removed a key of another prefix")
	}

	var out string
	if found, _ := c.GetAt(ctx, after, "sku:A", &out); found {
		t.Error("value survived purge")
	}
}

func TestSetAtRetiredGenerationIsInvisible(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, "test:")

	// value loaded before a purge, written after it
	gen, _ := c.Generation(ctx)
	if err := c.Purge(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.SetAt(ctx, gen, "sku:A", "stale"); err != nil {
		t.Fatalf("SetAt: %v", err)
	}

	current, _ := c.Generation(ctx)
	var out string
	if found, _ := c.GetAt(ctx, current, "sku:A", &out); found {
		t.Errorf("stale value visible after purge: %q", out)
	}
}
