package respcache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	c := New[string](10, time.Minute, 0.85)
	if !c.Put("k", "answer", 0.9) {
		t.Fatal("expected Put to accept a high score")
	}
	v, ok := c.Get("k")
	if !ok || v != "answer" {
		t.Fatalf("expected cached answer, got %q ok=%v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("unknown key must miss")
	}
}

func TestPutRejectsLowScore(t *testing.T) {
	c := New[string](10, time.Minute, 0.85)
	if c.Put("k", "weak answer", 0.84) {
		t.Fatal("Put must reject a score below the gate")
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("rejected entry must not be readable")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[string](10, 5*time.Minute, 0)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put("k", "v", 1)

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry must live within the TTL")
	}

	c.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry must expire after the TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired read must drop the entry, len=%d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](3, time.Minute, 0)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), i, 1)
	}
	// Touch k0 so k1 becomes the eviction candidate.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 should be present")
	}
	c.Put("k3", 3, 1)

	if _, ok := c.Get("k1"); ok {
		t.Fatal("least recently used entry must be evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s to survive", key)
		}
	}
}

func TestPutUpdatesExisting(t *testing.T) {
	c := New[string](2, time.Minute, 0)
	c.Put("k", "old", 1)
	c.Put("k", "new", 1)
	if c.Len() != 1 {
		t.Fatalf("update must not grow the cache, len=%d", c.Len())
	}
	if v, _ := c.Get("k"); v != "new" {
		t.Fatalf("expected updated value, got %q", v)
	}
}

func TestStats(t *testing.T) {
	c := New[string](2, time.Minute, 0)
	c.Put("k", "v", 1)
	c.Get("k")
	c.Get("nope")
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d/%d", hits, misses)
	}
}

func TestSweep(t *testing.T) {
	c := New[string](10, time.Minute, 0)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put("old", "v", 1)

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	c.Put("fresh", "v", 1)

	c.now = func() time.Time { return base.Add(70 * time.Second) }
	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("expected 1 swept entry, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 surviving entry, len=%d", c.Len())
	}
}
