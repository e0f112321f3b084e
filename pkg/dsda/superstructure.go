package dsda

import (
	"github.com/processdesign/dsda/pkg/gdp"
)

// Superstructure builds fresh, unfixed instances of a disjunctive model.
// Every call to Build must return an independent model with the same
// structure; the search fixes and solves one instance per evaluated point.
type Superstructure interface {
	Name() string
	Build() (*gdp.Model, error)
}

// Seeder is implemented by superstructures that know a feasible starting
// point.
type Seeder interface {
	DefaultSeed() Point
}
