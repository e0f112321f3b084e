package column

import (
	"math"

	"github.com/processdesign/dsda/pkg/nlp"
)

const (
	volatility = 2.4  // benzene relative to toluene
	feedFlow   = 100. // mol/s
	feedZ      = 0.5  // benzene
	feedVapor  = 0.40395
	distX      = 0.95 // benzene in the distillate
	bottomsX   = 0.05 // benzene in the bottoms

	dHvapBenzene = 33.770e3 // J/mol
	dHvapToluene = 38.262e3 // J/mol

	minReflux = 0.5
	maxReflux = 4.0
	minReboil = 1.3
	maxReboil = 4.0

	// Below this Gilliland abscissa the required stages are extrapolated
	// linearly; at minimum reflux they diverge.
	minAbscissa = 1e-4
)

// design is the shortcut model of a column with a given number of
// equilibrium stages: the active conditional trays, the feed tray and the
// reboiler.
type design struct {
	active int
	stages float64

	dist, bottoms float64
	nmin, rmin    float64
}

func newDesign(active int) design {
	d := design{active: active, stages: float64(active + 2)}
	d.dist = feedFlow * (feedZ - bottomsX) / (distX - bottomsX)
	d.bottoms = feedFlow - d.dist
	d.nmin = math.Log((distX/(1-distX))*((1-bottomsX)/bottomsX)) / math.Log(volatility)
	d.rmin = underwood()
	return d
}

// underwood returns the minimum reflux ratio. The root theta between the
// volatilities of the two components is found by bisection.
func underwood() float64 {
	q := 1 - feedVapor
	f := func(theta float64) float64 {
		return volatility*feedZ/(volatility-theta) + (1-feedZ)/(1-theta) - (1 - q)
	}
	lo, hi := 1.0, volatility
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if f(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	theta := (lo + hi) / 2
	return volatility*distX/(volatility-theta) + (1-distX)/(1-theta) - 1
}

// stagesRequired applies the Gilliland correlation in the form of
// Molokanov.
func (d design) stagesRequired(r float64) float64 {
	x := (r - d.rmin) / (r + 1)
	if x < minAbscissa {
		return d.gilliland(minAbscissa) + 1e6*(minAbscissa-x)
	}
	return d.gilliland(x)
}

func (d design) gilliland(x float64) float64 {
	y := 1 - math.Exp((1+54.4*x)/(11+117.2*x)*(x-1)/math.Sqrt(x))
	return (y + d.nmin) / (1 - y)
}

func (d design) vaporTop(r float64) float64 {
	return d.dist * (r + 1)
}

func (d design) vaporBottom(r float64) float64 {
	return d.vaporTop(r) - feedVapor*feedFlow
}

func (d design) reboilRatio(r float64) float64 {
	return d.vaporBottom(r) / d.bottoms
}

// duties returns the condenser and reboiler duties in MJ/s.
func (d design) duties(r float64) (qc, qb float64) {
	qc = d.vaporTop(r) * (distX*dHvapBenzene + (1-distX)*dHvapToluene) * 1e-6
	qb = d.vaporBottom(r) * (bottomsX*dHvapBenzene + (1-bottomsX)*dHvapToluene) * 1e-6
	return qc, qb
}

func (d design) cost(r float64) float64 {
	qc, qb := d.duties(r)
	return 1e3*(qc+qb) + 1e3*float64(d.active+1)
}

func (d design) snapshot(x []float64) nlp.Snapshot {
	r := x[0]
	qc, qb := d.duties(r)
	return nlp.Snapshot{
		nlp.ID("reflux_ratio"): r,
		nlp.ID("reboil_ratio"): d.reboilRatio(r),
		nlp.ID("dis"):          d.dist,
		nlp.ID("bot"):          d.bottoms,
		nlp.ID("Qc"):           qc,
		nlp.ID("Qb"):           qb,
		nlp.ID("N"):            d.stagesRequired(r),
		nlp.ID("Nmin"):         d.nmin,
		nlp.ID("Rmin"):         d.rmin,
	}
}
