package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(10, 10)

	assert.Equal(t, rune(0x2800|0x1), c.Grid[0][0])
	assert.Equal(t, rune(0x2800|0x80), c.Grid[0][1])
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for i, r := range c.Grid[0] {
		assert.Equal(t, rune(0x2800|0x1|0x8), r, "cell %d", i)
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]float64{0, 2, 1}, []float64{-1, 3, 3})
	assert.Equal(t, Bounds{MinX: 0, MaxX: 2, MinY: -1, MaxY: 3}, b)

	flat := BoundsOf([]float64{1}, []float64{1})
	assert.Equal(t, Bounds{MinX: 0.5, MaxX: 1.5, MinY: 0.5, MaxY: 1.5}, flat)

	empty := BoundsOf(nil, nil)
	assert.Equal(t, Bounds{MaxX: 1, MaxY: 1}, empty)
}

func TestPlotXYCorners(t *testing.T) {
	c := NewCanvas(3, 2)
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	c.PlotXY(xs, ys, BoundsOf(xs, ys))

	// origin lands bottom-left, (1, 1) top-right
	assert.NotEqual(t, rune(0x2800), c.Grid[1][0])
	assert.NotEqual(t, rune(0x2800), c.Grid[0][2])
	assert.Equal(t, rune(0x2800), c.Grid[0][0])
}

func TestRenderSummary(t *testing.T) {
	res := &nonlinear.Result{
		Steps:           make([]*nonlinear.LoadStep, 5),
		TotalIterations: 42,
		LoadFactor:      0.5,
		Aborted:         true,
		StopMessage:     "step 6 stopped at iteration 50",
		Metrics:         map[string]float64{"peak_load": 0.5, "mean_iterations": 8.4},
	}
	out := RenderSummary(NewSummary("softening_spring", "nr", "load", res))

	for _, want := range []string{"softening_spring", "aborted", "42", "peak_load", "mean_iterations", "step 6 stopped"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "mean_iterations"), strings.Index(out, "peak_load"))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"id", "steps"}, [][]string{{"a", "10"}, {"bbbb", "2"}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, underline, two rows
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "id    steps")
	assert.Contains(t, lines[2], "a     10")
	assert.Contains(t, lines[3], "bbbb  2")
}

func TestCharts(t *testing.T) {
	curve := []nonlinear.CurvePoint{{}, {LoadFactor: 0.1, Displacement: 0.05}, {LoadFactor: 0.2, Displacement: 0.1}}
	assert.Contains(t, LoadFactorChart(curve, 40, 5), "load factor per step")
	assert.Empty(t, LoadFactorChart(nil, 40, 5))

	out := IterationChart(map[string][]float64{"nr": {1, 2, 3}, "mnr": {1, 4, 6}}, 40, 5)
	assert.Contains(t, out, "iterations per step")
	assert.Empty(t, IterationChart(nil, 40, 5))

	plot := CurvePlot(curve, 10, 4)
	assert.Contains(t, plot, "displacement 0 .. 0.1")
	assert.Contains(t, plot, "load factor 0 .. 0.2")
}

func TestSparklineAndProgress(t *testing.T) {
	assert.Equal(t, strings.Repeat("─", 5), Sparkline(nil, 5))
	assert.NotEmpty(t, Sparkline([]float64{1, 2, 3, 4, 5, 6, 7}, 4))
	assert.NotEmpty(t, ProgressBar(1.5, 10))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "ocean", GetTheme("ocean").Name)
	assert.Equal(t, Themes[0].Name, GetTheme("nope").Name)
	assert.Equal(t, ThemeMinimal, ThemeCyberpunk.Next())
	assert.Equal(t, ThemeCyberpunk, ThemeOcean.Next())
	assert.Len(t, ThemeNames(), len(Themes))
}
