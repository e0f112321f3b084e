package reactor

import (
	"math"

	"github.com/processdesign/dsda/pkg/nlp"
)

const (
	kinetic   = 2.0 // L/(mol s)
	feedFlow  = 1.0 // L/s
	feedA     = 0.99
	feedB     = 0.01
	purity    = 0.95
	maxFlow   = 10.0
	maxVolume = 10.0

	bisections = 60
)

// flowsheet describes the selected structure: units 1..reactors are
// CSTRs, the rest bypass the feed, and the recycle enters unit recycle.
// Streams flow from unit nt down to unit 1, whose outlet is split into
// product and recycle.
type flowsheet struct {
	nt       int
	reactors int
	recycle  int
}

type unitState struct {
	q, qfr       float64
	fa, fb       float64
	fra, frb     float64
	rateA, rateB float64
	cost         float64
}

type state struct {
	v, qr float64
	units []unitState // indexed by unit, 0 unused
}

// solve simulates the flowsheet for volume v and recycle flow qr. The
// recycle composition equals the product composition; that fixed point
// is found by bisection.
func (f flowsheet) solve(v, qr float64) state {
	if qr <= 0 || f.recycle == 0 {
		return f.simulate(v, 0, 0)
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < bisections; i++ {
		mid := (lo + hi) / 2
		if f.simulate(v, qr, mid).product() > mid {
			lo = mid
		} else {
			hi = mid
		}
	}
	return f.simulate(v, qr, (lo+hi)/2)
}

// simulate runs the units once with a recycle of composition cp in B.
func (f flowsheet) simulate(v, qr, cp float64) state {
	s := state{v: v, qr: qr, units: make([]unitState, f.nt+1)}
	q, fa, fb := feedFlow, feedFlow*feedA, feedFlow*feedB
	for unit := f.nt; unit >= 1; unit-- {
		u := unitState{}
		if unit == f.recycle && qr > 0 {
			u.qfr = qr
			u.fra = qr * (1 - cp)
			u.frb = qr * cp
		}
		u.q = q + u.qfr
		inA, inB := fa+u.fra, fb+u.frb
		if unit <= f.reactors {
			total := (inA + inB) / u.q
			cb := outletB(kinetic*v, u.q, total, inB)
			ca := total - cb
			u.fa, u.fb = u.q*ca, u.q*cb
			u.rateB = kinetic * ca * cb
			u.rateA = -u.rateB
			u.cost = v
		} else {
			u.fa, u.fb = inA, inB
		}
		s.units[unit] = u
		q, fa, fb = u.q, u.fa, u.fb
	}
	return s
}

// outletB solves the B balance of a CSTR,
// in - q c + a (total - c) c = 0, for its non-negative root.
func outletB(a, q, total, in float64) float64 {
	b := q - a*total
	disc := math.Sqrt(b*b + 4*a*in)
	if b >= 0 {
		return 2 * in / (b + disc)
	}
	return (disc - b) / (2 * a)
}

// product returns the concentration of B leaving the last unit.
func (s state) product() float64 {
	u := s.units[1]
	return u.fb / u.q
}

func (s state) snapshot() nlp.Snapshot {
	out := make(nlp.Snapshot)
	for unit := 1; unit < len(s.units); unit++ {
		u := s.units[unit]
		out[nlp.ID("Q", unit)] = u.q
		out[nlp.ID("QFR", unit)] = u.qfr
		out[nlp.ID("F", "A", unit)] = u.fa
		out[nlp.ID("F", "B", unit)] = u.fb
		out[nlp.ID("FR", "A", unit)] = u.fra
		out[nlp.ID("FR", "B", unit)] = u.frb
		out[nlp.ID("rate", "A", unit)] = u.rateA
		out[nlp.ID("rate", "B", unit)] = u.rateB
		out[nlp.ID("V", unit)] = s.v
		out[nlp.ID("c", unit)] = u.cost
	}
	last := s.units[1]
	qp := last.q - s.qr
	out[nlp.ID("QR")] = s.qr
	out[nlp.ID("QP")] = qp
	out[nlp.ID("R", "A")] = last.fa * s.qr / last.q
	out[nlp.ID("R", "B")] = last.fb * s.qr / last.q
	out[nlp.ID("P", "A")] = last.fa * qp / last.q
	out[nlp.ID("P", "B")] = last.fb * qp / last.q
	return out
}
