// Package optim tunes solver settings by exhaustive grid search over
// configuration parameters.
package optim
