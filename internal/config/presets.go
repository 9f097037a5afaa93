package config

import (
	"sort"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

func preset(model string, modify func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	modify(cfg)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"spring": {
		"single": preset("spring", func(c *Config) {
			c.Steps = 1
		}),
		"stepped": preset("spring", func(c *Config) {
			c.Steps = 10
		}),
	},
	"softening_spring": {
		"load": preset("softening_spring", func(c *Config) {
			c.Steps = 10
			c.MaxIterations = 50
			c.ModelParams = ModelConfig{Stiffness: 1000, Stiffness2: -200, Yield: 110, Force: 200}
		}),
		"arc": preset("softening_spring", func(c *Config) {
			c.Steps = 10
			c.Control = nonlinear.ArcLengthControl.String()
			c.ModelParams = ModelConfig{Stiffness: 1000, Stiffness2: -200, Yield: 110, Force: 200}
		}),
	},
	"spring_chain": {
		"hardening": preset("spring_chain", func(c *Config) {
			c.Steps = 10
			c.ModelParams = ModelConfig{Stiffness: 100, Cubic: 50, Force: 100, Springs: 3}
		}),
		"secant": preset("spring_chain", func(c *Config) {
			c.Steps = 10
			c.Solver = nonlinear.Secant.String()
			c.ModelParams = ModelConfig{Stiffness: 100, Cubic: 50, Force: 100, Springs: 3}
		}),
	},
	"von_mises": {
		"snap": preset("von_mises", func(c *Config) {
			c.Steps = 60
			c.LoadFactor = 40
			c.Control = nonlinear.ArcLengthControl.String()
			c.ArcLength.Initial = 0.02
			c.ArcLength.Max = 0.03
			c.ModelParams = ModelConfig{Span: 2, Rise: 0.2, EA: 1e4, Force: 1}
		}),
		"load": preset("von_mises", func(c *Config) {
			c.Steps = 10
			c.LoadFactor = 20
			c.ModelParams = ModelConfig{Span: 2, Rise: 0.2, EA: 1e4, Force: 1}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListModels returns the models that have presets.
func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
