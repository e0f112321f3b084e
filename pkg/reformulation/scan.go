package reformulation

import (
	"io/ioutil"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/gdp"
)

type scanConfig struct {
	logger logrus.FieldLogger
}

type ScanOption func(*scanConfig)

// WithLogger sets the logger that reports skipped families.
func WithLogger(logger logrus.FieldLogger) ScanOption {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

type reference struct {
	family *gdp.BooleanFamily
	roles  IndexRoles
}

// Scan discovers the exactly constraints of m that can be driven by
// external variables. Every reference declares a family and the set it is
// reformulated along. A constraint qualifies when all of its operands are
// members of one referenced family and differ only on the reference
// dimensions. Entries are numbered in constraint declaration order.
func Scan(m *gdp.Model, refs []gdp.Reference, options ...ScanOption) (*Map, error) {
	config := &scanConfig{}
	for _, option := range options {
		option(config)
	}
	if config.logger == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		config.logger = l
	}

	rm := &Map{}
	var known []reference
	seen := make(map[*gdp.BooleanFamily]bool)
	for _, r := range refs {
		if seen[r.Family] {
			mismatch := ScanMismatch{Family: r.Family.Name, Set: r.Set.Name, Reason: "family is referenced more than once"}
			config.logger.WithFields(logrus.Fields{
				"family": mismatch.Family,
				"set":    mismatch.Set,
			}).Warn(mismatch.Reason)
			rm.mismatches = append(rm.mismatches, mismatch)
			continue
		}
		seen[r.Family] = true
		roles, err := Classify(r.Family, r.Set)
		if err != nil {
			mismatch := err.(ScanMismatch)
			config.logger.WithFields(logrus.Fields{
				"family": mismatch.Family,
				"set":    mismatch.Set,
			}).Warn(mismatch.Reason)
			rm.mismatches = append(rm.mismatches, mismatch)
			continue
		}
		known = append(known, reference{family: r.Family, roles: roles})
	}

	for _, c := range m.LogicalConstraints() {
		card, ok := c.Expr.(*gdp.CardinalityExpr)
		if !ok || card.Kind != gdp.Exactly || !c.Active() {
			continue
		}
		vars, ok := atomsOf(card.Operands)
		if !ok {
			continue
		}
		for _, r := range known {
			if !memberOf(vars, r.family) {
				continue
			}
			if len(r.roles.Other) > 0 && !r.roles.sameOther(vars) {
				config.logger.WithField("constraint", c.Name).Debug("operands differ outside the reference set, not reformulated")
				continue
			}
			rm.entries = append(rm.entries, newEntry(c.Name, card.N, vars, r.roles))
		}
	}

	if len(rm.entries) == 0 {
		return rm, ErrNoExternalVariables
	}
	return rm, nil
}

func newEntry(name string, count int, vars []*gdp.BooleanVar, roles IndexRoles) *Entry {
	sorted := make([]*gdp.BooleanVar, len(vars))
	copy(sorted, vars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareIndex(roles.refKey(sorted[i]), roles.refKey(sorted[j])) < 0
	})
	values := make([]gdp.Index, len(sorted))
	for i, v := range sorted {
		values[i] = roles.refKey(v)
	}
	return &Entry{
		Constraint:   name,
		ExactlyCount: count,
		Booleans:     sorted,
		IndexValues:  values,
		LowerBound:   1,
		UpperBound:   len(sorted),
	}
}

func atomsOf(operands []gdp.Expr) ([]*gdp.BooleanVar, bool) {
	if len(operands) == 0 {
		return nil, false
	}
	vars := make([]*gdp.BooleanVar, len(operands))
	for i, op := range operands {
		v, ok := op.(*gdp.BooleanVar)
		if !ok {
			return nil, false
		}
		vars[i] = v
	}
	return vars, true
}

func memberOf(vars []*gdp.BooleanVar, f *gdp.BooleanFamily) bool {
	for _, v := range vars {
		if v.Family().Name != f.Name {
			return false
		}
	}
	return true
}
