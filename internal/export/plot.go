package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// Series is one labelled load–displacement curve.
type Series struct {
	Name  string
	Curve []nonlinear.CurvePoint
}

var palette = []color.Color{
	color.RGBA{R: 0, G: 114, B: 178, A: 255},
	color.RGBA{R: 213, G: 94, B: 0, A: 255},
	color.RGBA{R: 0, G: 158, B: 115, A: 255},
	color.RGBA{R: 204, G: 121, B: 167, A: 255},
	color.RGBA{R: 86, G: 180, B: 233, A: 255},
}

// NewCurvePlot builds the load–displacement plot: displacement on X, load
// factor on Y, one marked line per series.
func NewCurvePlot(title string, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Displacement"
	p.Y.Label.Text = "Load factor"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Curve))
		for j, pt := range s.Curve {
			pts[j] = plotter.XY{X: pt.Displacement, Y: pt.LoadFactor}
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		c := palette[i%len(palette)]
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = c
		points.GlyphStyle.Color = c
		points.GlyphStyle.Radius = vg.Points(2.5)
		points.GlyphStyle.Shape = draw.CircleGlyph{}

		p.Add(line, points)
		if s.Name != "" {
			p.Legend.Add(s.Name, line, points)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// SaveCurve writes the plot to filename. The format follows the extension
// (.png, .svg or .pdf); any other extension gets .png appended.
func SaveCurve(filename, title string, series ...Series) (string, error) {
	p, err := NewCurvePlot(title, series...)
	if err != nil {
		return "", err
	}

	width := 8 * vg.Inch
	height := 6 * vg.Inch

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
	default:
		filename += ".png"
	}
	if err := p.Save(width, height, filename); err != nil {
		return "", err
	}
	return filename, nil
}
