package dsda

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/subproblem"
)

// Step is one accepted point of the route.
type Step struct {
	Point     Point
	Objective float64
	Direction int
	Phase     Phase
}

// Result is the outcome of a search. Route lists the accepted points in
// the order they were reached; the last one is Best.
type Result struct {
	Route       []Step
	Best        Point
	Objective   float64
	WarmStart   nlp.Snapshot
	Evaluations int
	Iterations  int
	// Stopped is set when the iteration bound ended the search before
	// a local optimum was confirmed.
	Stopped bool
}

// WriteRoute prints the route as a table.
func (r *Result) WriteRoute(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tPOINT\tPHASE\tDIRECTION\tOBJECTIVE")
	for i, s := range r.Route {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.6g\n", i, s.Point, s.Phase, s.Direction, s.Objective)
	}
	return tw.Flush()
}

// Evaluation is the outcome of one point of a complete enumeration.
type Evaluation struct {
	Point   Point
	Outcome subproblem.Outcome
}

// WriteEnumeration prints an enumeration as a table.
func WriteEnumeration(w io.Writer, evals []Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POINT\tSTATUS\tOBJECTIVE")
	for _, e := range evals {
		if e.Outcome.OK() {
			fmt.Fprintf(tw, "%s\t%s\t%.6g\n", e.Point, e.Outcome.Status, e.Outcome.Objective)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t-\n", e.Point, e.Outcome.Status)
	}
	return tw.Flush()
}
