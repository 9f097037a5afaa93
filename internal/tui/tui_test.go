package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestMenuSelectsPresetAndSolver(t *testing.T) {
	m := press(newMenu(), "enter", "enter", "down", "enter").(menu)

	require.True(t, m.chosen)
	cfg := m.Config()
	require.NotNil(t, cfg)

	models := config.ListModels()
	assert.Equal(t, models[0], cfg.Model)
	assert.Equal(t, "mnr", cfg.Solver)
}

func TestMenuBackAndQuit(t *testing.T) {
	m := press(newMenu(), "enter", "esc").(menu)
	assert.Equal(t, stateModel, m.state)

	m = press(m, "q").(menu)
	assert.True(t, m.canceled)
	assert.Nil(t, m.Config())
}

func TestLiveAppliesEvents(t *testing.T) {
	cfg := config.GetPreset("spring", "stepped")
	require.NotNil(t, cfg)

	ch := make(chan nonlinear.Event)
	var m tea.Model = newLive(cfg, ch)

	m, cmd := m.Update(eventMsg{Kind: nonlinear.EventStepConverged, Step: 1, Iterations: 1, LoadFactor: 0.1, Displacement: 0.05})
	assert.NotNil(t, cmd)
	m, _ = m.Update(eventMsg{Kind: nonlinear.EventStepConverged, Step: 2, Iterations: 2, LoadFactor: 0.2, Displacement: 0.1})

	l := m.(live)
	assert.Len(t, l.curve, 3)
	assert.Equal(t, []float64{1, 2}, l.iterations)
	assert.Equal(t, statusRunning, l.status)
	assert.InDelta(t, 2.0/float64(cfg.Steps), l.progress(), 1e-12)

	m, _ = m.Update(eventMsg{Kind: nonlinear.EventAnalysisComplete, Step: 2})
	l = m.(live)
	assert.Equal(t, statusCompleted, l.status)
	assert.Equal(t, 1.0, l.progress())
	assert.Contains(t, l.View(), "completed")
}

func TestLiveRecordsAbort(t *testing.T) {
	cfg := config.GetPreset("softening_spring", "load")
	require.NotNil(t, cfg)

	var m tea.Model = newLive(cfg, nil)
	m, _ = m.Update(eventMsg{Kind: nonlinear.EventStepAborted, Step: 6, Message: "step 6 stopped"})
	m, _ = m.Update(closedMsg{})

	l := m.(live)
	assert.Equal(t, statusAborted, l.status)
	assert.True(t, l.closed)
	assert.Contains(t, l.View(), "step 6 stopped")
}

func TestLiveThemeCycles(t *testing.T) {
	cfg := config.GetPreset("spring", "single")
	require.NotNil(t, cfg)

	m := press(newLive(cfg, nil), "t").(live)
	assert.NotEqual(t, "cyberpunk", m.theme.Name)
}
