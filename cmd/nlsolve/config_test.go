package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignment(t *testing.T) {
	name, v, err := parseAssignment(" model_params.rise = 0.3")
	require.NoError(t, err)
	assert.Equal(t, "model_params.rise", name)
	assert.Equal(t, 0.3, v)

	_, _, err = parseAssignment("steps")
	assert.Error(t, err)
	_, _, err = parseAssignment("steps=ten")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	name, vals, err := parseRange("arc_length.max=0.01, 0.02,0.05")
	require.NoError(t, err)
	assert.Equal(t, "arc_length.max", name)
	assert.Equal(t, []float64{0.01, 0.02, 0.05}, vals)

	name, vals, err = parseRange("steps=10:30:3")
	require.NoError(t, err)
	assert.Equal(t, "steps", name)
	assert.Equal(t, []float64{10, 20, 30}, vals)

	for _, bad := range []string{"steps", "steps=", "steps=a,b", "steps=1:x:3"} {
		_, _, err := parseRange(bad)
		assert.Error(t, err, bad)
	}
}
