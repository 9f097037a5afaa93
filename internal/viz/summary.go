package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// Summary is the printable digest of a run.
type Summary struct {
	Title       string
	Solver      string
	Control     string
	Steps       int
	Iterations  int
	LoadFactor  float64
	Aborted     bool
	StopMessage string
	Metrics     map[string]float64
}

func NewSummary(title, solver, control string, res *nonlinear.Result) Summary {
	return Summary{
		Title:       title,
		Solver:      solver,
		Control:     control,
		Steps:       len(res.Steps),
		Iterations:  res.TotalIterations,
		LoadFactor:  res.LoadFactor,
		Aborted:     res.Aborted,
		StopMessage: res.StopMessage,
		Metrics:     res.Metrics,
	}
}

func row(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-18s", label)) + MetricValue.Render(value)
}

// RenderSummary renders s as a bordered panel.
func RenderSummary(s Summary) string {
	status := StatusConverged.Render("completed")
	if s.Aborted {
		status = StatusAborted.Render("aborted")
	}

	lines := []string{
		Title.Render(s.Title) + "  " + status,
		row("solver", s.Solver),
		row("control", s.Control),
		row("steps", fmt.Sprintf("%d", s.Steps)),
		row("iterations", fmt.Sprintf("%d", s.Iterations)),
		row("load factor", fmt.Sprintf("%.6g", s.LoadFactor)),
	}

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, row(name, fmt.Sprintf("%.6g", s.Metrics[name])))
	}

	if s.Aborted && s.StopMessage != "" {
		lines = append(lines, "", StatusAborted.Render(s.StopMessage))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// RenderTable renders a header and rows as aligned columns.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(Header.Render(format(header)))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(format(r))
		b.WriteString("\n")
	}
	return b.String()
}

// LoadFactorChart plots the load factor per step with asciigraph.
func LoadFactorChart(curve []nonlinear.CurvePoint, width, height int) string {
	if len(curve) == 0 {
		return ""
	}
	data := make([]float64, len(curve))
	for i, pt := range curve {
		data[i] = pt.LoadFactor
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("load factor per step"),
	)
}

// IterationChart plots the iteration count per step, one series per run.
func IterationChart(series map[string][]float64, width, height int) string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}

	data := make([][]float64, 0, len(names))
	colors := []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow, asciigraph.Magenta}
	seriesColors := make([]asciigraph.AnsiColor, 0, len(names))
	for i, name := range names {
		s := series[name]
		if len(s) == 0 {
			s = []float64{0}
		}
		data = append(data, s)
		seriesColors = append(seriesColors, colors[i%len(colors)])
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.Caption("iterations per step: "+strings.Join(names, ", ")),
	)
}

// CurvePlot draws the load–displacement curve on a Braille canvas with
// the axis ranges printed alongside.
func CurvePlot(curve []nonlinear.CurvePoint, width, height int) string {
	xs := make([]float64, len(curve))
	ys := make([]float64, len(curve))
	for i, pt := range curve {
		xs[i] = pt.Displacement
		ys[i] = pt.LoadFactor
	}
	b := BoundsOf(xs, ys)

	c := NewCanvas(width, height)
	c.PlotXY(xs, ys, b)

	var out strings.Builder
	out.WriteString(Subtle.Render(fmt.Sprintf("load factor %.4g .. %.4g", b.MinY, b.MaxY)))
	out.WriteString("\n")
	out.WriteString(c.String())
	out.WriteString(Subtle.Render(fmt.Sprintf("displacement %.4g .. %.4g", b.MinX, b.MaxX)))
	return out.String()
}
