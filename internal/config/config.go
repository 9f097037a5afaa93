package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

const (
	DefaultLoadFactor = 1.0
	DefaultStiffness  = 1000.0
	DefaultForce      = 500.0
	DefaultSprings    = 3
	DefaultSpan       = 2.0
	DefaultRise       = 0.2
	DefaultEA         = 1e4
)

type Config struct {
	Model                 string          `yaml:"model"`
	Solver                string          `yaml:"solver"`
	Control               string          `yaml:"control"`
	LoadFactor            float64         `yaml:"load_factor"`
	Steps                 int             `yaml:"steps"`
	MaxIterations         int             `yaml:"max_iterations"`
	MinIterations         int             `yaml:"min_iterations"`
	ForceTolerance        float64         `yaml:"force_tolerance"`
	DisplacementTolerance float64         `yaml:"displacement_tolerance"`
	MonitoredDoF          int             `yaml:"monitored_dof"`
	ArcLength             ArcLengthConfig `yaml:"arc_length"`
	ModelParams           ModelConfig     `yaml:"model_params"`
}

type ArcLengthConfig struct {
	DesiredIterations int     `yaml:"desired_iterations"`
	Initial           float64 `yaml:"initial"`
	Min               float64 `yaml:"min"`
	Max               float64 `yaml:"max"`
}

// ModelConfig holds the parameters of every built-in model; each model
// reads the fields it needs.
type ModelConfig struct {
	Stiffness  float64 `yaml:"stiffness"`
	Stiffness2 float64 `yaml:"stiffness2"`
	Yield      float64 `yaml:"yield"`
	Cubic      float64 `yaml:"cubic"`
	Force      float64 `yaml:"force"`
	Springs    int     `yaml:"springs"`
	Span       float64 `yaml:"span"`
	Rise       float64 `yaml:"rise"`
	EA         float64 `yaml:"ea"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:                 "spring",
		Solver:                nonlinear.NewtonRaphson.String(),
		Control:               nonlinear.LoadControl.String(),
		LoadFactor:            DefaultLoadFactor,
		Steps:                 nonlinear.DefaultNumberOfSteps,
		MaxIterations:         nonlinear.DefaultMaxIterations,
		MinIterations:         nonlinear.DefaultMinIterations,
		ForceTolerance:        nonlinear.DefaultForceTolerance,
		DisplacementTolerance: nonlinear.DefaultDisplacementTolerance,
		MonitoredDoF:          -1,
		ArcLength: ArcLengthConfig{
			DesiredIterations: nonlinear.DefaultDesiredIterations,
		},
		ModelParams: ModelConfig{
			Stiffness: DefaultStiffness,
			Force:     DefaultForce,
			Springs:   DefaultSprings,
			Span:      DefaultSpan,
			Rise:      DefaultRise,
			EA:        DefaultEA,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a copy; Config holds no references.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Parameters converts the solver settings and validates them.
func (c *Config) Parameters() (nonlinear.Parameters, error) {
	solver, err := nonlinear.ParseSolverKind(c.Solver)
	if err != nil {
		return nonlinear.Parameters{}, err
	}
	control, err := nonlinear.ParseControl(c.Control)
	if err != nil {
		return nonlinear.Parameters{}, err
	}

	p := nonlinear.Parameters{
		Solver:                solver,
		Control:               control,
		NumberOfSteps:         c.Steps,
		MaxIterations:         c.MaxIterations,
		MinIterations:         c.MinIterations,
		ForceTolerance:        c.ForceTolerance,
		DisplacementTolerance: c.DisplacementTolerance,
		DesiredIterations:     c.ArcLength.DesiredIterations,
		ArcLength:             c.ArcLength.Initial,
		MinArcLength:          c.ArcLength.Min,
		MaxArcLength:          c.ArcLength.Max,
		MonitoredDoF:          c.MonitoredDoF,
	}
	if err := p.Validate(); err != nil {
		return nonlinear.Parameters{}, err
	}
	return p, nil
}
