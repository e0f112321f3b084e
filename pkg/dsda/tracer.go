package dsda

import (
	"fmt"
	"io"

	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/subproblem"
)

// Phase is the state of the search that produced an event or a step.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseExplore    Phase = "explore"
	PhaseLineSearch Phase = "line-search"
	PhaseDone       Phase = "done"
)

type EventKind string

const (
	// EventFixed follows the fixing of a model at Point; Report is set.
	EventFixed EventKind = "fixed"
	// EventEvaluated follows a subproblem solve at Point; Outcome is set.
	EventEvaluated EventKind = "evaluated"
	// EventFiltered reports a candidate rejected by Filter.
	EventFiltered EventKind = "filtered"
	// EventMove reports a new incumbent.
	EventMove EventKind = "move"
	// EventDone reports the end of the search at the incumbent.
	EventDone EventKind = "done"
)

type Event struct {
	Kind      EventKind
	Phase     Phase
	Point     Point
	Direction int
	Filter    string
	Objective float64
	Report    *reformulation.Report
	Outcome   *subproblem.Outcome
}

type Tracer interface {
	Trace(e Event)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Event) {
}

// LoggingTracer writes a textual audit trail of the search: the fixed
// assignment of every evaluated point, its outcome and every move.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(e Event) {
	switch e.Kind {
	case EventFixed:
		fmt.Fprintf(t.Writer, "---\n")
		e.Report.WriteTo(t.Writer)
	case EventEvaluated:
		if e.Outcome.OK() {
			fmt.Fprintf(t.Writer, "x=%s status=%s objective=%g\n", e.Point, e.Outcome.Status, e.Outcome.Objective)
			return
		}
		fmt.Fprintf(t.Writer, "x=%s status=%s\n", e.Point, e.Outcome.Status)
	case EventFiltered:
		fmt.Fprintf(t.Writer, "x=%s rejected by %s\n", e.Point, e.Filter)
	case EventMove:
		fmt.Fprintf(t.Writer, "move %s to x=%s direction=%d objective=%g\n", e.Phase, e.Point, e.Direction, e.Objective)
	case EventDone:
		fmt.Fprintf(t.Writer, "done at x=%s objective=%g\n", e.Point, e.Objective)
	}
}
