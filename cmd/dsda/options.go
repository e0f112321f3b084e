package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/processdesign/dsda/pkg/config"
	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/metrics"
	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/subproblem"
)

// runOptions are the flags shared by the commands that build a driver.
// Flags set on the command line override the config file.
type runOptions struct {
	configPath    string
	model         string
	nt            int
	seed          string
	filters       []string
	parallelism   int
	timeLimit     time.Duration
	maxIterations int
	memo          bool
	metricsAddr   string

	flags *pflag.FlagSet
}

func (o *runOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "YAML run configuration")
	fs.StringVar(&o.model, "model", "reactor", "superstructure to optimize")
	fs.IntVar(&o.nt, "nt", 0, "number of candidate units or trays, 0 for the model default")
	fs.StringVar(&o.seed, "seed", "", "starting point, for example 1,1")
	fs.StringSliceVar(&o.filters, "filters", nil, "optional neighbor filters: asymmetry, logic")
	fs.IntVar(&o.parallelism, "parallelism", 1, "neighbors evaluated concurrently")
	fs.DurationVar(&o.timeLimit, "time-limit", dsda.DefaultTimeLimit, "time limit of every subproblem solve")
	fs.IntVar(&o.maxIterations, "max-iterations", 0, "bound on explore rounds, 0 for none")
	fs.BoolVar(&o.memo, "memo", false, "reuse the outcome of points already evaluated")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	o.flags = fs
}

// load reads the config file, when given, and applies the flags set on
// the command line over it.
func (o *runOptions) load() (*config.Config, error) {
	c := config.Default()
	if o.configPath != "" {
		var err error
		if c, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	changed := o.flags.Changed
	if changed("model") || o.configPath == "" {
		c.Model = o.model
	}
	if changed("nt") {
		c.Params.NT = o.nt
	}
	if changed("seed") {
		p, err := dsda.ParsePoint(o.seed)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing seed %q", o.seed)
		}
		c.Seed = p
	}
	if changed("filters") {
		c.Filters = nil
		for _, f := range o.filters {
			c.Filters = append(c.Filters, strings.TrimSpace(f))
		}
	}
	if changed("parallelism") {
		c.Parallelism = o.parallelism
	}
	if changed("time-limit") {
		c.TimeLimit = config.Duration{Duration: o.timeLimit}
	}
	if changed("max-iterations") {
		c.MaxIterations = o.maxIterations
	}
	if changed("memo") {
		c.Memo = o.memo
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// driver builds the search described by c, solving subproblems with the
// augmented Lagrangian backend.
func (o *runOptions) driver(c *config.Config, extra ...dsda.Option) (*dsda.Driver, error) {
	ss, err := c.Superstructure()
	if err != nil {
		return nil, err
	}
	options, err := c.Options()
	if err != nil {
		return nil, err
	}
	logger := log.StandardLogger()
	options = append(options, dsda.WithLogger(logger))
	options = append(options, extra...)

	backend, err := nlp.NewAugmentedLagrangian(nlp.WithSolverLogger(logger))
	if err != nil {
		return nil, err
	}
	solver := subproblem.NewInstrumentedSolver(backend,
		func(d time.Duration) { metrics.EmitSubproblemSolve("success", d) },
		func(d time.Duration) { metrics.EmitSubproblemSolve("failure", d) },
	)
	return dsda.NewDriver(ss, solver, options...)
}

// serveMetrics exposes the registered metrics when an address was given.
func (o *runOptions) serveMetrics() {
	if o.metricsAddr == "" {
		return
	}
	metrics.RegisterDSDA()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(o.metricsAddr, metricsMux); err != nil {
			log.Errorf("Metrics (http) failed: %v", err)
		}
	}()
	log.WithField("addr", o.metricsAddr).Info("serving metrics")
}
