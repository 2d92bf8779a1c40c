package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	m := NoopMinimizeHooks{}
	m.OnPackageStart(ctx, "app", 3)
	m.OnTrialStart(ctx, "app", "serde", "derive")
	m.OnTrialComplete(ctx, "app", "serde", "derive", true, time.Second)
	m.OnPackageComplete(ctx, "app", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "crates")
	c.OnCacheMiss(ctx, "crates")
	c.OnCacheSet(ctx, "crates")

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "crates.io", "/api/v1/crates/serde")
	h.OnResponse(ctx, "GET", "crates.io", "/api/v1/crates/serde", 200, time.Second)
	h.OnError(ctx, "GET", "crates.io", "/api/v1/crates/serde", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Minimize().(NoopMinimizeHooks); !ok {
		t.Error("Minimize() should return NoopMinimizeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	stats := NewTrialStats()
	SetMinimizeHooks(stats)
	if Minimize() != stats {
		t.Error("SetMinimizeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Minimize().(NoopMinimizeHooks); !ok {
		t.Error("Reset() should restore NoopMinimizeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	stats := NewTrialStats()
	SetMinimizeHooks(stats)
	SetMinimizeHooks(nil)
	if Minimize() != stats {
		t.Error("SetMinimizeHooks(nil) should be ignored")
	}
}

func TestTrialStats(t *testing.T) {
	ctx := context.Background()
	stats := NewTrialStats()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stats.OnTrialComplete(ctx, "app", "dep", "f", i%2 == 0, time.Duration(i+1)*time.Second)
		}(i)
	}
	wg.Wait()
	stats.OnPackageComplete(ctx, "app", time.Minute, nil)
	stats.OnPackageComplete(ctx, "lib", time.Minute, errors.New("metadata"))

	s := stats.Snapshot()
	if s.Trials != 4 || s.Removable != 2 || s.Required != 2 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Packages != 2 || s.Failed != 1 {
		t.Errorf("unexpected package counts: %+v", s)
	}
	if s.Slowest != 4*time.Second {
		t.Errorf("Slowest = %v, want 4s", s.Slowest)
	}
	if s.Mean() != 2500*time.Millisecond {
		t.Errorf("Mean() = %v, want 2.5s", s.Mean())
	}
	if (Stats{}).Mean() != 0 {
		t.Error("Mean() of empty stats should be 0")
	}
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
