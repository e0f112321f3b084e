package reformulation

import (
	"github.com/processdesign/dsda/pkg/gdp"
)

// IndexRoles splits the index dimensions of a Boolean family into the
// dimensions reformulated into an integer (Ref) and the rest (Other).
type IndexRoles struct {
	Ref   []int
	Other []int
}

// Classify assigns index roles for family with respect to the reference
// set. A family indexed by a single set is reformulated along that set.
// Higher rank families are matched by set name.
func Classify(family *gdp.BooleanFamily, ref *gdp.Set) (IndexRoles, error) {
	switch family.Rank() {
	case 0:
		return IndexRoles{}, ScanMismatch{Family: family.Name, Set: ref.Name, Reason: "family is not indexed"}
	case 1:
		return IndexRoles{Ref: []int{0}}, nil
	}
	var roles IndexRoles
	for d, s := range family.Sets {
		if s.Name == ref.Name {
			roles.Ref = append(roles.Ref, d)
		} else {
			roles.Other = append(roles.Other, d)
		}
	}
	if len(roles.Ref) == 0 {
		return IndexRoles{}, ScanMismatch{Family: family.Name, Set: ref.Name, Reason: "no index dimension matches the reference set"}
	}
	return roles, nil
}

// refKey returns the index values of v along the reference dimensions.
func (r IndexRoles) refKey(v *gdp.BooleanVar) gdp.Index {
	idx := v.Index()
	key := make(gdp.Index, len(r.Ref))
	for i, d := range r.Ref {
		key[i] = idx[d]
	}
	return key
}

// sameOther reports whether every variable shares its index values on the
// Other dimensions.
func (r IndexRoles) sameOther(vs []*gdp.BooleanVar) bool {
	if len(vs) == 0 {
		return false
	}
	first := vs[0].Index()
	for _, v := range vs[1:] {
		idx := v.Index()
		for _, d := range r.Other {
			if gdp.Compare(idx[d], first[d]) != 0 {
				return false
			}
		}
	}
	return true
}

func compareIndex(a, b gdp.Index) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := gdp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}
