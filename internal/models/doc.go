// Package models provides small structural assemblies to drive the
// nonlinear solver: springs with linear, bilinear and cubic laws, and
// geometrically nonlinear truss bars.
package models
