package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("market|all", 1)
	c.Set("wharf|all", 2)
	c.Set("motorpool|all", 3)

	if _, ok := c.Get("market|all"); ok {
		t.Error("oldest entry survived eviction")
	}
	if v, ok := c.Get("motorpool|all"); !ok || v != 3 {
		t.Errorf("newest entry = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Millisecond)
	c.Set("stats", "cached")
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("stats"); ok {
		t.Error("expired entry still served")
	}
	c.Set("stats", "fresh")
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired removed %d fresh entries", n)
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("market|all", 1)
	c.Set("market|2026-01-01..2026-01-31", 2)
	c.Set("wharf|all", 3)

	if n := c.DeletePrefix("market|"); n != 2 {
		t.Fatalf("DeletePrefix removed %d entries, want 2", n)
	}
	if _, ok := c.Get("market|all"); ok {
		t.Error("prefixed entry survived")
	}
	if _, ok := c.Get("wharf|all"); !ok {
		t.Error("unrelated entry was dropped")
	}
}

func TestManagerSweeps(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("market|all", 1)
	time.Sleep(5 * time.Millisecond)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	defer m.Stop()

	deadline := time.After(time.Second)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("expired entry never swept")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop() // must not block
}
