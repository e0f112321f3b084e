// Package sat answers logic feasibility questions about a disjunctive
// model: given values for some of its Boolean variables, can the
// remaining ones be chosen so that every active logical constraint,
// disjunction, dependent declaration and unit-coefficient linear
// constraint holds?
package sat

import (
	"io/ioutil"
	"sync"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/gdp"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Checker answers feasibility queries against the logic of one model
// instance. Queries must use variables of that instance. It is safe for
// concurrent use.
type Checker struct {
	mu     sync.Mutex
	g      *gini.Gini
	dict   *litMapping
	buffer []z.Lit
}

type Option func(*checkerConfig)

type checkerConfig struct {
	logger logrus.FieldLogger
}

// WithLogger sets the logger reporting constraints left out of the
// encoding.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *checkerConfig) {
		c.logger = logger
	}
}

// New encodes the active logic of m. Variables already fixed in m are
// encoded as fixed.
func New(m *gdp.Model, options ...Option) (*Checker, error) {
	config := &checkerConfig{}
	for _, option := range options {
		option(config)
	}
	if config.logger == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		config.logger = l
	}

	dict, err := newLitMapping(m, config.logger)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding model %q", m.Name)
	}
	g := gini.New()
	dict.c.ToCnf(g)
	return &Checker{g: g, dict: dict}, nil
}

// Feasible reports whether the model's logic admits the assignment.
func (c *Checker) Feasible(assignment map[*gdp.BooleanVar]bool) (bool, error) {
	err := c.Explain(assignment)
	if _, ok := err.(NotSatisfiable); ok {
		return false, nil
	}
	return err == nil, err
}

// Explain returns nil when the assignment is feasible and a
// NotSatisfiable error naming the conflicting constraints otherwise.
func (c *Checker) Explain(assignment map[*gdp.BooleanVar]bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.explain(assignment)
}

func (c *Checker) explain(assignment map[*gdp.BooleanVar]bool) error {
	c.buffer = c.buffer[:0]
	for _, v := range c.dict.vars {
		value, ok := assignment[v]
		if !ok {
			continue
		}
		c.buffer = append(c.buffer, c.dict.litOfValue(v, value))
	}
	if len(c.buffer) != len(assignment) {
		for v := range assignment {
			c.dict.LitOf(v)
		}
	}
	if err := c.dict.Error(); err != nil {
		c.dict.errs = nil
		return err
	}

	c.g.Assume(c.dict.ConstraintLits()...)
	c.g.Assume(c.buffer...)
	switch c.g.Solve() {
	case satisfiable:
		return nil
	case unsatisfiable:
		return NotSatisfiable(c.dict.Conflicts(c.g.Why(nil)))
	}
	return errors.New("satisfiability query did not complete")
}

// Model returns a complete satisfying assignment extending the given
// one, in the declaration order of the model's variables.
func (c *Checker) Model(assignment map[*gdp.BooleanVar]bool) (map[*gdp.BooleanVar]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.explain(assignment); err != nil {
		return nil, err
	}
	out := make(map[*gdp.BooleanVar]bool, len(c.dict.vars))
	for _, v := range c.dict.vars {
		out[v] = c.g.Value(c.dict.lits[v])
	}
	return out, nil
}
