// Package config loads the YAML description of a search run.
package config

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/models"
	"github.com/processdesign/dsda/pkg/nlp"
)

// Duration is a time.Duration written as a Go duration string, "10s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "duration must be a string such as \"10s\"")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config describes one run. Fields left out of a file keep the values of
// Default.
type Config struct {
	Model           string        `json:"model"`
	Params          models.Params `json:"params,omitempty"`
	Seed            []int         `json:"seed,omitempty"`
	Neighborhood    string        `json:"neighborhood,omitempty"`
	Filters         []string      `json:"filters,omitempty"`
	Tolerance       float64       `json:"tolerance"`
	Parallelism     int           `json:"parallelism"`
	TimeLimit       Duration      `json:"timeLimit"`
	OptimalityGap   float64       `json:"optimalityGap"`
	MaxInitAttempts int           `json:"maxInitAttempts"`
	MaxIterations   int           `json:"maxIterations,omitempty"`
	Memo            bool          `json:"memo,omitempty"`
}

func Default() *Config {
	return &Config{
		Model:           "reactor",
		Neighborhood:    "k2",
		Tolerance:       dsda.DefaultTolerance,
		Parallelism:     1,
		TimeLimit:       Duration{dsda.DefaultTimeLimit},
		MaxInitAttempts: dsda.DefaultMaxInitAttempts,
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	return c, nil
}

// Parse reads YAML (or JSON) over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newInvalidConfigError(msg string, args ...interface{}) error {
	return errors.Errorf("invalid dsda config: "+msg, args...)
}

func (c *Config) Validate() error {
	switch {
	case c.Model == "":
		return newInvalidConfigError("model is required")
	case c.Neighborhood != "k2":
		return newInvalidConfigError("unsupported neighborhood %q", c.Neighborhood)
	case c.Tolerance < 0:
		return newInvalidConfigError("tolerance must not be negative")
	case c.Parallelism < 1:
		return newInvalidConfigError("parallelism must be at least 1")
	case c.TimeLimit.Duration < 0:
		return newInvalidConfigError("time limit must not be negative")
	case c.OptimalityGap < 0:
		return newInvalidConfigError("optimality gap must not be negative")
	case c.MaxInitAttempts < 1:
		return newInvalidConfigError("at least one initialization attempt is required")
	case c.MaxIterations < 0:
		return newInvalidConfigError("max iterations must not be negative")
	}
	for _, f := range c.Filters {
		if f == "bounds" {
			continue
		}
		if _, err := dsda.FilterByName(f); err != nil {
			return newInvalidConfigError("%v", err)
		}
	}
	return nil
}

// Superstructure returns the configured model.
func (c *Config) Superstructure() (dsda.Superstructure, error) {
	return models.Lookup(c.Model, c.Params)
}

// Options translates the configuration into driver options.
func (c *Config) Options() ([]dsda.Option, error) {
	options := []dsda.Option{
		dsda.WithNeighborhood(dsda.K2{}),
		dsda.WithTolerance(c.Tolerance),
		dsda.WithParallelism(c.Parallelism),
		dsda.WithSolverOptions(nlp.Options{TimeLimit: c.TimeLimit.Duration, OptimalityGap: c.OptimalityGap}),
		dsda.WithMaxInitAttempts(c.MaxInitAttempts),
		dsda.WithMaxIterations(c.MaxIterations),
		dsda.WithMemo(c.Memo),
	}
	if len(c.Seed) > 0 {
		options = append(options, dsda.WithSeed(dsda.Point(c.Seed)))
	}
	for _, name := range c.Filters {
		// The bounds filter is always applied.
		if name == "bounds" {
			continue
		}
		f, err := dsda.FilterByName(name)
		if err != nil {
			return nil, err
		}
		options = append(options, dsda.WithFilters(f))
	}
	return options, nil
}
