package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille pixel grid of Width x Height cells, each holding
// 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Bounds is the data range mapped onto a canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// BoundsOf returns the range of xs and ys, widened where it is empty.
func BoundsOf(xs, ys []float64) Bounds {
	b := Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for i := range xs {
		b.MinX = math.Min(b.MinX, xs[i])
		b.MaxX = math.Max(b.MaxX, xs[i])
		b.MinY = math.Min(b.MinY, ys[i])
		b.MaxY = math.Max(b.MaxY, ys[i])
	}
	if len(xs) == 0 {
		return Bounds{MaxX: 1, MaxY: 1}
	}
	if b.MaxX == b.MinX {
		b.MinX, b.MaxX = b.MinX-0.5, b.MaxX+0.5
	}
	if b.MaxY == b.MinY {
		b.MinY, b.MaxY = b.MinY-0.5, b.MaxY+0.5
	}
	return b
}

// PlotXY connects the points (xs[i], ys[i]) with lines. Y grows upward.
func (c *Canvas) PlotXY(xs, ys []float64, b Bounds) {
	w := float64(c.Width*2 - 1)
	h := float64(c.Height*4 - 1)
	px := func(i int) (int, int) {
		x := (xs[i] - b.MinX) / (b.MaxX - b.MinX) * w
		y := h - (ys[i]-b.MinY)/(b.MaxY-b.MinY)*h
		return int(math.Round(x)), int(math.Round(y))
	}

	for i := range xs {
		x1, y1 := px(i)
		if i == 0 {
			c.Set(x1, y1)
			continue
		}
		x0, y0 := px(i - 1)
		c.DrawLine(x0, y0, x1, y1)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
