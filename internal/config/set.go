package config

import (
	"fmt"
	"math"
	"sort"
)

type field struct {
	float func(*Config) *float64
	int   func(*Config) *int
}

var fields = map[string]field{
	"load_factor":                   {float: func(c *Config) *float64 { return &c.LoadFactor }},
	"steps":                         {int: func(c *Config) *int { return &c.Steps }},
	"max_iterations":                {int: func(c *Config) *int { return &c.MaxIterations }},
	"min_iterations":                {int: func(c *Config) *int { return &c.MinIterations }},
	"force_tolerance":               {float: func(c *Config) *float64 { return &c.ForceTolerance }},
	"displacement_tolerance":        {float: func(c *Config) *float64 { return &c.DisplacementTolerance }},
	"monitored_dof":                 {int: func(c *Config) *int { return &c.MonitoredDoF }},
	"arc_length.desired_iterations": {int: func(c *Config) *int { return &c.ArcLength.DesiredIterations }},
	"arc_length.initial":            {float: func(c *Config) *float64 { return &c.ArcLength.Initial }},
	"arc_length.min":                {float: func(c *Config) *float64 { return &c.ArcLength.Min }},
	"arc_length.max":                {float: func(c *Config) *float64 { return &c.ArcLength.Max }},
	"model_params.stiffness":        {float: func(c *Config) *float64 { return &c.ModelParams.Stiffness }},
	"model_params.stiffness2":       {float: func(c *Config) *float64 { return &c.ModelParams.Stiffness2 }},
	"model_params.yield":            {float: func(c *Config) *float64 { return &c.ModelParams.Yield }},
	"model_params.cubic":            {float: func(c *Config) *float64 { return &c.ModelParams.Cubic }},
	"model_params.force":            {float: func(c *Config) *float64 { return &c.ModelParams.Force }},
	"model_params.springs":          {int: func(c *Config) *int { return &c.ModelParams.Springs }},
	"model_params.span":             {float: func(c *Config) *float64 { return &c.ModelParams.Span }},
	"model_params.rise":             {float: func(c *Config) *float64 { return &c.ModelParams.Rise }},
	"model_params.ea":               {float: func(c *Config) *float64 { return &c.ModelParams.EA }},
}

// Set assigns a numeric setting by its YAML path, e.g. "arc_length.max" or
// "model_params.rise". Integer settings reject fractional values.
func (c *Config) Set(path string, v float64) error {
	f, ok := fields[path]
	if !ok {
		return fmt.Errorf("unknown parameter %q", path)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("parameter %s: value %g is not finite", path, v)
	}
	if f.int != nil {
		if v != math.Trunc(v) {
			return fmt.Errorf("parameter %s: %g is not an integer", path, v)
		}
		*f.int(c) = int(v)
		return nil
	}
	*f.float(c) = v
	return nil
}

// Get reads a numeric setting by its YAML path.
func (c *Config) Get(path string) (float64, error) {
	f, ok := fields[path]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q", path)
	}
	if f.int != nil {
		return float64(*f.int(c)), nil
	}
	return *f.float(c), nil
}

// SettableParams lists the paths accepted by Set.
func SettableParams() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
