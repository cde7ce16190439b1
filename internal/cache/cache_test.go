package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Fatalf("expected alpha, got %q ok=%v", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := NewLRU[int](4, -time.Second)

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired item should miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired item should be dropped on Get, len=%d", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive eviction")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Len())
	}
}

func TestOverwriteKeepsSingleItem(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("a", 2)

	got, ok := c.Get("a")
	if !ok || got != 2 {
		t.Fatalf("expected overwrite to 2, got %d ok=%v", got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted item should miss")
	}
}
