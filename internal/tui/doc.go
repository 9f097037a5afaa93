// Package tui holds the interactive terminal front ends: a preset picker
// and a live view that follows an analysis step by step.
package tui
