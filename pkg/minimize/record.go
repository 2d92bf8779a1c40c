package minimize

import (
	"github.com/matzehuels/featprune/pkg/features"
	"github.com/matzehuels/featprune/pkg/report"
)

// State is the position of a [Record] in its lifecycle.
type State int

const (
	// StatePending has untested features left in the queue.
	StatePending State = iota
	// StateTesting has a candidate popped and awaiting Pass or Fail.
	StateTesting
	// StateDone has tested every original feature.
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateTesting:
		return "testing"
	default:
		return "done"
	}
}

// Record tracks the minimization of one dependency.
//
// At every point the queue, the removable set, the required set and the
// candidate under test partition the original set. Each original feature is
// popped exactly once, in lexical order.
type Record struct {
	dependency string
	original   features.Set
	queue      []string
	removable  features.Set
	required   features.Set
	candidate  string
	testing    bool
}

// NewRecord starts a record for dependency with the given enabled features.
func NewRecord(dependency string, enabled features.Set) *Record {
	return &Record{
		dependency: dependency,
		original:   enabled.Clone(),
		queue:      enabled.Sorted(),
		removable:  make(features.Set),
		required:   make(features.Set),
	}
}

// Dependency returns the dependency key.
func (r *Record) Dependency() string { return r.dependency }

// State returns the current state.
func (r *Record) State() State {
	switch {
	case r.testing:
		return StateTesting
	case len(r.queue) == 0:
		return StateDone
	default:
		return StatePending
	}
}

// Done reports whether every feature has been tested.
func (r *Record) Done() bool { return r.State() == StateDone }

// Next pops the next candidate and returns it with the feature list to build
// with: the remaining queue plus everything found required so far. It
// returns false when the record is done or a candidate is still under test.
func (r *Record) Next() (candidate string, trial []string, ok bool) {
	if r.State() != StatePending {
		return "", nil, false
	}
	r.candidate, r.queue = r.queue[0], r.queue[1:]
	r.testing = true

	set := features.NewSet(r.queue...)
	for f := range r.required {
		set.Add(f)
	}
	return r.candidate, set.Sorted(), true
}

// Pass marks the candidate removable.
func (r *Record) Pass() { r.settle(r.removable) }

// Fail marks the candidate required.
func (r *Record) Fail() { r.settle(r.required) }

func (r *Record) settle(into features.Set) {
	if !r.testing {
		return
	}
	into.Add(r.candidate)
	r.candidate, r.testing = "", false
}

// Original returns a copy of the features enabled before minimization.
func (r *Record) Original() features.Set { return r.original.Clone() }

// Removable returns a copy of the features found removable.
func (r *Record) Removable() features.Set { return r.removable.Clone() }

// Required returns a copy of the features found required.
func (r *Record) Required() features.Set { return r.required.Clone() }

// Entry converts the record to its report form.
func (r *Record) Entry() report.Dependency {
	return report.Dependency{
		Original:  r.Original(),
		Removable: r.Removable(),
		Required:  r.Required(),
	}
}
