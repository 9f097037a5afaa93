// Package viz renders analysis results in the terminal: lipgloss summary
// tables, asciigraph charts and a Braille canvas for the load–displacement
// curve.
package viz
