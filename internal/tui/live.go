package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/experiment"
	"github.com/san-kum/nlsolve/internal/nonlinear"
	"github.com/san-kum/nlsolve/internal/viz"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type eventMsg nonlinear.Event

type closedMsg struct{}

func waitForEvent(ch <-chan nonlinear.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

type runStatus int

const (
	statusRunning runStatus = iota
	statusCompleted
	statusAborted
)

// live follows a running analysis through its event stream.
type live struct {
	events <-chan nonlinear.Event
	title  string
	arc    bool
	target float64
	steps  int

	curve      []nonlinear.CurvePoint
	iterations []float64
	status     runStatus
	message    string
	closed     bool

	frame  int
	theme  viz.Theme
	width  int
	height int
}

func newLive(cfg *config.Config, events <-chan nonlinear.Event) live {
	control, _ := nonlinear.ParseControl(cfg.Control)
	return live{
		events: events,
		title:  fmt.Sprintf("%s · %s · %s", cfg.Model, cfg.Solver, control),
		arc:    control == nonlinear.ArcLengthControl,
		target: cfg.LoadFactor,
		steps:  cfg.Steps,
		curve:  []nonlinear.CurvePoint{{}},
		theme:  viz.ThemeCyberpunk,
		width:  80,
		height: 24,
	}
}

func (m live) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick())
}

func (m live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "t":
			m.theme = m.theme.Next()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.status != statusRunning {
			return m, nil
		}
		m.frame++
		return m, tick()
	case eventMsg:
		m = m.apply(nonlinear.Event(msg))
		return m, waitForEvent(m.events)
	case closedMsg:
		m.closed = true
		return m, nil
	}
	return m, nil
}

func (m live) apply(ev nonlinear.Event) live {
	switch ev.Kind {
	case nonlinear.EventStepConverged:
		m.curve = append(m.curve, nonlinear.CurvePoint{LoadFactor: ev.LoadFactor, Displacement: ev.Displacement})
		m.iterations = append(m.iterations, float64(ev.Iterations))
	case nonlinear.EventStepAborted, nonlinear.EventAnalysisAborted:
		m.status = statusAborted
		if ev.Message != "" {
			m.message = ev.Message
		}
	case nonlinear.EventAnalysisComplete:
		m.status = statusCompleted
	}
	return m
}

// progress is the fraction of the run done: steps for load control, the
// larger of steps and load factor for arc-length.
func (m live) progress() float64 {
	done := float64(len(m.curve)-1) / float64(max(1, m.steps))
	if m.arc && m.target > 0 {
		done = math.Max(done, m.curve[len(m.curve)-1].LoadFactor/m.target)
	}
	if m.status == statusCompleted {
		return 1
	}
	return math.Min(1, math.Max(0, done))
}

func (m live) View() string {
	title := viz.Title.Foreground(m.theme.Primary)

	var status string
	switch m.status {
	case statusCompleted:
		status = viz.StatusConverged.Render("completed")
	case statusAborted:
		status = viz.StatusAborted.Render("aborted")
	default:
		status = viz.StatusRunning.Render(viz.AnimatedSpinner(m.frame) + " running")
	}

	last := m.curve[len(m.curve)-1]
	plotW := max(20, min(m.width-6, 100))
	plotH := max(6, min(m.height-14, 30))

	var b strings.Builder
	b.WriteString(title.Render(m.title) + "  " + status + "\n")
	b.WriteString(viz.Separator(plotW) + "\n")
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		viz.MetricLabel.Render("step"), viz.MetricValue.Render(fmt.Sprintf("%d", len(m.curve)-1)),
		viz.MetricLabel.Render("λ"), viz.MetricValue.Render(fmt.Sprintf("%.5g", last.LoadFactor)),
		viz.MetricLabel.Render("u"), viz.MetricValue.Render(fmt.Sprintf("%.5g", last.Displacement)))
	b.WriteString(viz.ProgressBar(m.progress(), plotW) + "\n\n")
	b.WriteString(viz.CurvePlot(m.curve, plotW/2, plotH/2) + "\n\n")
	b.WriteString(viz.MetricLabel.Render("iterations ") + viz.Sparkline(m.iterations, plotW-11) + "\n")

	if m.message != "" {
		b.WriteString("\n" + viz.StatusAborted.Render(m.message) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("t theme · q quit"))
	return b.String()
}

// RunLive runs cfg in the background and follows it in the terminal until
// the user quits. Quitting early cancels the run after the current step.
func RunLive(ctx context.Context, cfg *config.Config, reg *experiment.Registry, logger *slog.Logger) (*nonlinear.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := nonlinear.NewEventSink(16)
	exp := experiment.New(cfg)
	if err := exp.Setup(reg, logger, sink); err != nil {
		return nil, err
	}

	type outcome struct {
		res *nonlinear.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := exp.Run(ctx)
		sink.Close()
		done <- outcome{res, err}
	}()

	p := tea.NewProgram(newLive(exp.Config(), sink.Events()), tea.WithAltScreen())
	_, uiErr := p.Run()

	cancel()
	for range sink.Events() {
	}
	out := <-done
	if uiErr != nil {
		return out.res, uiErr
	}
	return out.res, out.err
}
