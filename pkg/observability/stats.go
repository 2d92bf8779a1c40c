package observability

import (
	"context"
	"sync"
	"time"
)

// Stats is a point-in-time copy of [TrialStats].
type Stats struct {
	Packages  int
	Failed    int // packages that ended with an error
	Trials    int
	Removable int
	Required  int
	BuildTime time.Duration // summed trial durations
	Slowest   time.Duration
}

// TrialStats counts minimization events. It implements [MinimizeHooks] and
// is safe for concurrent use.
type TrialStats struct {
	NoopMinimizeHooks

	mu sync.Mutex
	s  Stats
}

// NewTrialStats returns an empty collector.
func NewTrialStats() *TrialStats { return &TrialStats{} }

func (t *TrialStats) OnTrialComplete(_ context.Context, _, _, _ string, removable bool, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Trials++
	if removable {
		t.s.Removable++
	} else {
		t.s.Required++
	}
	t.s.BuildTime += d
	t.s.Slowest = max(t.s.Slowest, d)
}

func (t *TrialStats) OnPackageComplete(_ context.Context, _ string, _ time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Packages++
	if err != nil {
		t.s.Failed++
	}
}

// Snapshot returns the counters collected so far.
func (t *TrialStats) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

// Mean returns the average trial duration, or 0 without trials.
func (s Stats) Mean() time.Duration {
	if s.Trials == 0 {
		return 0
	}
	return s.BuildTime / time.Duration(s.Trials)
}
