// Package automation runs batches of analyses: YAML scenarios, parameter
// sweeps and Monte Carlo perturbation studies.
package automation
