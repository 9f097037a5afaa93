package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nlsolve/internal/config"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var modelInfo = map[string]string{
	"spring":           "linear spring",
	"softening_spring": "limit point",
	"spring_chain":     "hardening chain",
	"von_mises":        "snap-through truss",
}

var solverChoices = []string{"nr", "mnr", "secant"}

type state int

const (
	stateModel state = iota
	statePreset
	stateSolver
)

// menu picks a model, one of its presets and a solver.
type menu struct {
	state   state
	cursor  int
	models  []string
	presets []string

	model    string
	preset   string
	solver   string
	chosen   bool
	canceled bool
}

func newMenu() menu {
	return menu{models: config.ListModels()}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) options() []string {
	switch m.state {
	case statePreset:
		return m.presets
	case stateSolver:
		return solverChoices
	}
	return m.models
}

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options())-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.state > stateModel {
			m.state--
			m.cursor = 0
		}
	case "enter", " ":
		opts := m.options()
		if len(opts) == 0 {
			return m, nil
		}
		choice := opts[m.cursor]
		m.cursor = 0
		switch m.state {
		case stateModel:
			m.model = choice
			m.presets = config.ListPresets(choice)
			m.state = statePreset
		case statePreset:
			m.preset = choice
			m.state = stateSolver
		case stateSolver:
			m.solver = choice
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menu) View() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("nlsolve"))
	b.WriteString(dim.Render("  nonlinear equilibrium paths"))
	b.WriteString("\n\n")

	switch m.state {
	case stateModel:
		b.WriteString(white.Render("model") + "\n\n")
	case statePreset:
		b.WriteString(white.Render(m.model+" / preset") + "\n\n")
	case stateSolver:
		b.WriteString(white.Render(m.model+" / "+m.preset+" / solver") + "\n\n")
	}

	for i, opt := range m.options() {
		line := fmt.Sprintf("  %s", opt)
		if m.state == stateModel {
			line = fmt.Sprintf("  %-18s %s", opt, dim.Render(modelInfo[opt]))
		}
		if i == m.cursor {
			b.WriteString(green.Render("›") + yellow.Render(line[1:]) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("↑/↓ move · enter select · esc back · q quit"))
	return b.String()
}

// Config returns the chosen preset with the chosen solver, or nil when the
// menu was left without a choice.
func (m menu) Config() *config.Config {
	if !m.chosen {
		return nil
	}
	cfg := config.GetPreset(m.model, m.preset)
	if cfg == nil {
		return nil
	}
	cfg.Solver = m.solver
	return cfg
}

// SelectConfig shows the menu and returns the chosen configuration, or nil
// when the user quit.
func SelectConfig() (*config.Config, error) {
	p := tea.NewProgram(newMenu(), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(menu).Config(), nil
}
