package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache() (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)}
	c := New(TTLs(30 * time.Second))
	c.now = clk.now
	return c, clk
}

func counter(calls *int, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		return value, nil
	}
}

func TestGetCachesWithinTTL(t *testing.T) {
	c, clk := newTestCache()
	calls := 0

	for i := 0; i < 3; i++ {
		v, err := Get(context.Background(), c, Weeks, "u1", "2024-06-03", counter(&calls, "week"))
		if err != nil || v != "week" {
			t.Fatalf("Get = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 load within TTL, got %d", calls)
	}

	clk.t = clk.t.Add(31 * time.Second)
	if _, err := Get(context.Background(), c, Weeks, "u1", "2024-06-03", counter(&calls, "week")); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("Expected reload after TTL, got %d loads", calls)
	}

	// Recipes keep twice as long.
	if _, err := Get(context.Background(), c, Recipes, "u1", "", counter(&calls, "list")); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(45 * time.Second)
	if _, err := Get(context.Background(), c, Recipes, "u1", "", counter(&calls, "list")); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("Expected recipe list to still be cached, got %d loads", calls)
	}
}

func TestKeysAreScoped(t *testing.T) {
	c, _ := newTestCache()
	calls := 0

	Get(context.Background(), c, Weeks, "u1", "2024-06-03", counter(&calls, "a"))
	Get(context.Background(), c, Weeks, "u1", "2024-06-10", counter(&calls, "b"))
	Get(context.Background(), c, Weeks, "u2", "2024-06-03", counter(&calls, "c"))
	Get(context.Background(), c, Dashboard, "u1", "2024-06-03", counter(&calls, "d"))

	if calls != 4 {
		t.Errorf("Expected distinct keys to load separately, got %d loads", calls)
	}
	if v, _ := Get(context.Background(), c, Weeks, "u2", "2024-06-03", counter(&calls, "x")); v != "c" {
		t.Errorf("Expected u2's own entry, got %q", v)
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache()
	calls := 0

	Get(context.Background(), c, Weeks, "u1", "w", counter(&calls, "a"))
	Get(context.Background(), c, Dashboard, "u1", "", counter(&calls, "b"))
	Get(context.Background(), c, Weeks, "u2", "w", counter(&calls, "c"))

	c.Invalidate("u1", Weeks)
	if c.Len() != 2 {
		t.Errorf("Expected only u1's weeks entry dropped, %d entries left", c.Len())
	}

	Get(context.Background(), c, Weeks, "u1", "w", counter(&calls, "a2"))
	Get(context.Background(), c, Dashboard, "u1", "", counter(&calls, "b2"))
	Get(context.Background(), c, Weeks, "u2", "w", counter(&calls, "c2"))
	if calls != 4 {
		t.Errorf("Expected one reload, got %d loads", calls)
	}

	c.Invalidate("u1")
	if c.Len() != 1 {
		t.Errorf("Expected all of u1's entries dropped, %d entries left", c.Len())
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache()
	calls := 0
	boom := errors.New("boom")

	_, err := Get(context.Background(), c, Weeks, "u1", "w", func(context.Context) (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	Get(context.Background(), c, Weeks, "u1", "w", counter(&calls, "ok"))
	if calls != 2 {
		t.Errorf("Expected failed load to be retried on next Get, got %d loads", calls)
	}
}

func TestDisabled(t *testing.T) {
	calls := 0

	var nilCache *Cache
	Get(context.Background(), nilCache, Weeks, "u1", "w", counter(&calls, "a"))
	Get(context.Background(), nilCache, Weeks, "u1", "w", counter(&calls, "a"))
	nilCache.Invalidate("u1")

	off := New(TTLs(0))
	Get(context.Background(), off, Weeks, "u1", "w", counter(&calls, "a"))
	Get(context.Background(), off, Weeks, "u1", "w", counter(&calls, "a"))

	if calls != 4 {
		t.Errorf("Expected every Get to load, got %d loads", calls)
	}
}

func TestConcurrentLoadsAreDeduplicated(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := Get(context.Background(), c, Weeks, "u1", "w", func(context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Expected 1 load for concurrent callers, got %d", calls.Load())
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("Result %d = %q", i, v)
		}
	}
}

func TestInvalidateDuringLoadDiscardsResult(t *testing.T) {
	c, _ := newTestCache()

	_, err := Get(context.Background(), c, Weeks, "u1", "w", func(context.Context) (string, error) {
		c.Invalidate("u1", Weeks)
		return "stale", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Error("Expected result loaded across an invalidation not to be stored")
	}
}

func TestSharedLoadIgnoresCallerCancellation(t *testing.T) {
	c, _ := newTestCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := Get(ctx, c, Weeks, "u1", "w", func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "week", nil
	})
	if err != nil {
		t.Fatalf("Expected load to ignore the canceled caller, got %v", err)
	}
	if v != "week" {
		t.Errorf("Unexpected value %q", v)
	}
}
