package cache

import (
	"testing"
	"time"
)

func TestGetReturnsSetValueWithinTTL(t *testing.T) {
	c := New[string](time.Minute, 0)

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestGetMissesAndDropsAfterExpiry(t *testing.T) {
	c := New[string](10*time.Millisecond, 0)

	c.Set("k", "v")
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped on read, len=%d", c.Len())
	}
}

func TestSetSweepsExpiredEntries(t *testing.T) {
	c := New[int](10*time.Millisecond, 0)

	c.Set("old1", 1)
	c.Set("old2", 2)
	time.Sleep(25 * time.Millisecond)
	c.Set("fresh", 3)

	if c.Len() != 1 {
		t.Fatalf("expected the write to sweep expired entries, len=%d", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatalf("expected the fresh entry to survive the sweep")
	}
}

func TestDeleteRemovesOneKey(t *testing.T) {
	c := New[int](time.Minute, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected deleted key to miss")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected the other key to survive")
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	c := New[int](time.Minute, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected cleared cache to be empty, len=%d", c.Len())
	}
}

func TestMaxEntriesEvictsStalest(t *testing.T) {
	c := New[int](time.Minute, 2)

	c.Set("a", 1)
	time.Sleep(2 * time.Millisecond)
	c.Set("b", 2)
	time.Sleep(2 * time.Millisecond)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected the stalest entry to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected a fresher entry to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected the new entry to be stored")
	}
}

func TestOverwritingExistingKeyDoesNotEvict(t *testing.T) {
	c := New[int](time.Minute, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	if got, ok := c.Get("a"); !ok || got != 10 {
		t.Fatalf("expected overwrite in place, got %d ok=%v", got, ok)
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected the other entry to survive an overwrite")
	}
}
