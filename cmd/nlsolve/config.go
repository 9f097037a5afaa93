package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/optim"
	"github.com/san-kum/nlsolve/internal/storage"
)

// resolveConfig builds the analysis configuration from, in order, a config
// file or a preset or the defaults, then the flags the user set, then the
// --set overrides.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if model != "" {
			cfg.Model = model
		}
	case preset != "":
		if model == "" {
			return nil, errors.New("--preset needs a model argument")
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	default:
		cfg = config.DefaultConfig()
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("control") {
		cfg.Control = control
	}
	if flags.Changed("load-factor") {
		cfg.LoadFactor = loadFactor
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("arc-length") {
		cfg.ArcLength.Initial = arcLength
	}

	for _, kv := range overrides {
		name, v, err := parseAssignment(kv)
		if err != nil {
			return nil, err
		}
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}

	if _, err := cfg.Parameters(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAssignment(kv string) (string, float64, error) {
	name, val, ok := strings.Cut(kv, "=")
	if !ok {
		return "", 0, fmt.Errorf("expected name=value, got %q", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(name), v, nil
}

// parseRange reads "name=v1,v2,v3" or "name=lo:hi:n".
func parseRange(s string) (string, []float64, error) {
	name, values, ok := strings.Cut(s, "=")
	if !ok || values == "" {
		return "", nil, fmt.Errorf("expected name=values, got %q", s)
	}
	name = strings.TrimSpace(name)

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("%s: %w", name, err)
		}
		return name, optim.Linspace(lo, hi, n), nil
	}

	var vals []float64
	for _, p := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", name, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// resolveRun accepts a run ID or "latest".
func resolveRun(st *storage.Store, id string) (*storage.RunMetadata, error) {
	if id == "latest" {
		return st.Latest()
	}
	return st.Load(id)
}
