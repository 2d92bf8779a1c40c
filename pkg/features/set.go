package features

import (
	"encoding/json"
	"sort"
)

// Set is an unordered set of feature names.
//
// The zero value is an empty, read-only set; use [NewSet] or make to obtain
// one that can be added to. Sets encode to JSON as a sorted array so reports
// diff cleanly.
type Set map[string]struct{}

// NewSet returns a set containing names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) { s[name] = struct{}{} }

// Remove deletes name from the set.
func (s Set) Remove(name string) { delete(s, name) }

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Union returns a new set with the names of s and o.
func (s Set) Union(o Set) Set {
	out := s.Clone()
	for n := range o {
		out[n] = struct{}{}
	}
	return out
}

// Difference returns a new set with the names of s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set, len(s))
	for n := range s {
		if !o.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether s and o share at least one name.
func (s Set) Intersects(o Set) bool {
	for n := range s {
		if o.Has(n) {
			return true
		}
	}
	return false
}

// Equal reports whether s and o contain the same names.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if !o.Has(n) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}
