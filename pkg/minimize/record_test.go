package minimize

import (
	"testing"

	"github.com/matzehuels/featprune/pkg/features"
)

func TestRecordTrialLists(t *testing.T) {
	rec := NewRecord("x", features.NewSet("c", "a", "b"))
	outcomes := []bool{true, false, true}
	wantTrials := [][]string{
		{"b", "c"}, // a popped
		{"c"},      // b popped, a removable
		{"b"},      // c popped, b required
	}
	for i, pass := range outcomes {
		cand, trial, ok := rec.Next()
		if !ok {
			t.Fatalf("step %d: Next returned false", i)
		}
		if rec.State() != StateTesting {
			t.Errorf("step %d: state %v, want testing", i, rec.State())
		}
		if _, _, again := rec.Next(); again {
			t.Errorf("step %d: Next must not pop while testing %s", i, cand)
		}
		if !equal(trial, wantTrials[i]) {
			t.Errorf("step %d: trial for %s = %v, want %v", i, cand, trial, wantTrials[i])
		}
		if pass {
			rec.Pass()
		} else {
			rec.Fail()
		}
	}
	if !rec.Done() {
		t.Fatal("record should be done")
	}
	if !rec.Removable().Equal(features.NewSet("a", "c")) || !rec.Required().Equal(features.NewSet("b")) {
		t.Errorf("removable=%v required=%v", rec.Removable().Sorted(), rec.Required().Sorted())
	}
}

// TestRecordTotality drives every outcome sequence for a four-feature set and
// checks the partition invariant after each step.
func TestRecordTotality(t *testing.T) {
	original := features.NewSet("a", "b", "c", "d")
	n := original.Len()
	for mask := 0; mask < 1<<n; mask++ {
		rec := NewRecord("x", original)
		trials := 0
		for {
			_, _, ok := rec.Next()
			if !ok {
				break
			}
			if mask&(1<<trials) != 0 {
				rec.Pass()
			} else {
				rec.Fail()
			}
			trials++
			checkPartition(t, rec, original)
		}
		if trials != n {
			t.Errorf("mask %b: %d trials, want %d", mask, trials, n)
		}
		if got := rec.Removable().Len() + rec.Required().Len(); got != n {
			t.Errorf("mask %b: %d features classified, want %d", mask, got, n)
		}
		if !rec.Original().Equal(original) {
			t.Errorf("mask %b: original changed", mask)
		}
	}
}

func checkPartition(t *testing.T, rec *Record, original features.Set) {
	t.Helper()
	queue := features.NewSet(rec.queue...)
	if rec.removable.Intersects(rec.required) || queue.Intersects(rec.removable) || queue.Intersects(rec.required) {
		t.Fatalf("sets overlap: queue=%v removable=%v required=%v", rec.queue, rec.removable.Sorted(), rec.required.Sorted())
	}
	if !queue.Union(rec.removable).Union(rec.required).Equal(original) {
		t.Fatalf("sets do not cover the original")
	}
}

func TestRecordEmpty(t *testing.T) {
	rec := NewRecord("z", features.NewSet())
	if !rec.Done() {
		t.Error("empty record should be done")
	}
	if _, _, ok := rec.Next(); ok {
		t.Error("Next on empty record should return false")
	}
	rec.Pass()
	if rec.Removable().Len() != 0 {
		t.Error("Pass without candidate must not record anything")
	}
}

func TestRecordOriginalIsCopy(t *testing.T) {
	in := features.NewSet("a")
	rec := NewRecord("x", in)
	in.Add("b")
	if rec.Original().Has("b") {
		t.Error("record must copy its input set")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
