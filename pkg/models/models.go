// Package models registers the bundled superstructures by name.
package models

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/models/column"
	"github.com/processdesign/dsda/pkg/models/reactor"
	"github.com/processdesign/dsda/pkg/models/smallbatch"
)

// Params are the size parameters a superstructure may read. Zero values
// select the superstructure's default.
type Params struct {
	// NT is the number of candidate units of the reactor and the number
	// of trays of the column.
	NT int `json:"nt,omitempty"`
	// NK is the largest number of parallel units of a batch stage.
	NK int `json:"nk,omitempty"`
	// MinTrays is the smallest column allowed.
	MinTrays int `json:"minTrays,omitempty"`
}

type constructor func(Params) dsda.Superstructure

var registry = map[string]constructor{
	"reactor": func(p Params) dsda.Superstructure {
		return reactor.New(reactor.Params{NT: p.NT})
	},
	"smallbatch": func(p Params) dsda.Superstructure {
		return smallbatch.New(smallbatch.Params{NK: p.NK})
	},
	"column": func(p Params) dsda.Superstructure {
		return column.New(column.Params{NT: p.NT, MinTrays: p.MinTrays})
	},
}

// Lookup returns the superstructure registered as name.
func Lookup(name string, params Params) (dsda.Superstructure, error) {
	c, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown model %q, expected one of %v", name, Names())
	}
	return c(params), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
