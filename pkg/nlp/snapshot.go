package nlp

import (
	"sort"
)

// Snapshot holds the last known value of model variables, keyed by their
// stable identifiers. It is used as a warm start for the next solve and is
// treated as immutable once produced: use Clone before modifying a
// Snapshot that someone else holds.
type Snapshot map[VarID]float64

// Get returns the value recorded for id.
func (s Snapshot) Get(id VarID) (float64, bool) {
	v, ok := s[id]
	return v, ok
}

// Clone returns a copy of the receiver.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Families returns the sorted names of the variable families present in
// the receiver.
func (s Snapshot) Families() []string {
	set := make(map[string]struct{})
	for id := range s {
		set[id.Family] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Family returns the values of one variable family keyed by index.
func (s Snapshot) Family(name string) map[string]float64 {
	out := make(map[string]float64)
	for id, v := range s {
		if id.Family == name {
			out[id.Index] = v
		}
	}
	return out
}

// With returns a copy of the receiver with id set to v.
func (s Snapshot) With(id VarID, v float64) Snapshot {
	out := s.Clone()
	if out == nil {
		out = make(Snapshot, 1)
	}
	out[id] = v
	return out
}
