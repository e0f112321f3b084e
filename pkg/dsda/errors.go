package dsda

import (
	"github.com/pkg/errors"
)

// ErrNoFeasibleStart is returned when initialization finds no point whose
// subproblem solves.
var ErrNoFeasibleStart = errors.New("no feasible starting point found")
