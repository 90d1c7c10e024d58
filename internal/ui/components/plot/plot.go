// Package plot draws channel geometry as braille lines with value and
// time axes, a selection overlay and a pointer crosshair.
package plot

import (
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/NimbleMarkets/ntcharts/v2/canvas"
	"github.com/NimbleMarkets/ntcharts/v2/canvas/graph"
	"github.com/NimbleMarkets/ntcharts/v2/canvas/runes"

	lgraph "github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/render"
	"github.com/kpumuk/lazyscope/internal/selection"
	"github.com/kpumuk/lazyscope/internal/ui/charts"
	"github.com/kpumuk/lazyscope/internal/ui/format"
)

// Braille cells hold a 2x4 dot matrix; one dot is one engine pixel.
const (
	DotsX = 2
	DotsY = 4
)

// YLabelWidth is the fixed width of the value axis column.
const YLabelWidth = 8

// MarkerRune marks a survey point.
const MarkerRune = '◆'

// Styles holds the visual styles for the plot.
type Styles struct {
	Label     lipgloss.Style
	Selection lipgloss.Style
	Edge      lipgloss.Style
	Cursor    lipgloss.Style
	Marker    lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultStyles returns sensible default styles.
func DefaultStyles() Styles {
	return Styles{
		Label:     lipgloss.NewStyle(),
		Selection: lipgloss.NewStyle().Reverse(true),
		Edge:      lipgloss.NewStyle(),
		Cursor:    lipgloss.NewStyle().Faint(true),
		Marker:    lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Faint(true),
	}
}

// XFormatter formats a time tick; step is the tick interval.
type XFormatter func(ms float64, step time.Duration) string

// Model holds the plot state.
type Model struct {
	styles       Styles
	width        int
	height       int
	paths        []render.RenderedPath
	scales       lgraph.Scales
	hasScales    bool
	rect         *selection.Rect
	cursorCol    int
	cursorOn     bool
	markers      []selection.Point
	xFormatter   XFormatter
	emptyMessage string
}

// Option is a functional option for configuring the plot.
type Option func(*Model)

// New creates a new plot model.
func New(opts ...Option) Model {
	m := Model{
		styles: DefaultStyles(),
		xFormatter: func(ms float64, step time.Duration) string {
			return format.AxisTime(ms, 0, false, step, nil)
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets custom styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithSize sets the dimensions in cells, axes included.
func WithSize(w, h int) Option {
	return func(m *Model) { m.width, m.height = w, h }
}

// WithXFormatter sets the time axis label formatter.
func WithXFormatter(f XFormatter) Option {
	return func(m *Model) { m.xFormatter = f }
}

// WithEmptyMessage sets the message shown while there is no geometry.
func WithEmptyMessage(msg string) Option {
	return func(m *Model) { m.emptyMessage = msg }
}

// SetStyles updates the styles.
func (m *Model) SetStyles(s Styles) { m.styles = s }

// SetSize updates the dimensions.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// SetXFormatter updates the time axis label formatter.
func (m *Model) SetXFormatter(f XFormatter) { m.xFormatter = f }

// SetEmptyMessage updates the empty state message.
func (m *Model) SetEmptyMessage(msg string) { m.emptyMessage = msg }

// SetPaths sets the geometry to draw. Segments are in engine pixels of
// the plot area.
func (m *Model) SetPaths(paths []render.RenderedPath) { m.paths = paths }

// SetScales sets the live scales used for tick placement.
func (m *Model) SetScales(s lgraph.Scales) { m.scales, m.hasScales = s, true }

// SetSelection sets the highlighted region, nil for none.
func (m *Model) SetSelection(r *selection.Rect) { m.rect = r }

// SetCursor shows a crosshair at plot column col.
func (m *Model) SetCursor(col int) { m.cursorCol, m.cursorOn = col, true }

// HideCursor removes the crosshair.
func (m *Model) HideCursor() { m.cursorOn = false }

// SetMarkers sets survey points in data space. They are placed through
// the live scales, so they follow zoom and pan.
func (m *Model) SetMarkers(points []selection.Point) { m.markers = points }

// Width returns the current width.
func (m Model) Width() int { return m.width }

// Height returns the current height.
func (m Model) Height() int { return m.height }

// PlotSize returns the drawing area in cells, axes excluded.
func (m Model) PlotSize() (cols, rows int) {
	return max(m.width-YLabelWidth-1, 1), max(m.height-1, 1)
}

// Viewport returns the engine viewport of the drawing area. Axes live
// outside the canvas, so the margin is zero.
func (m Model) Viewport() lgraph.Viewport {
	cols, rows := m.PlotSize()
	return lgraph.Viewport{Width: cols * DotsX, Height: rows * DotsY}
}

// Origin returns the top-left cell of the drawing area relative to the
// component.
func (m Model) Origin() (x, y int) {
	return YLabelWidth + 1, 0
}

// Cell converts component coordinates to a drawing area cell.
func (m Model) Cell(x, y int) (col, row int, ok bool) {
	ox, oy := m.Origin()
	cols, rows := m.PlotSize()
	col, row = x-ox, y-oy
	return col, row, col >= 0 && col < cols && row >= 0 && row < rows
}

// Dot returns the engine pixel at the centre of a cell.
func Dot(col, row int) (px, py float64) {
	return float64(col*DotsX) + DotsX/2, float64(row*DotsY) + DotsY/2
}

// View renders the plot.
func (m Model) View() string {
	if m.width < YLabelWidth+2 || m.height < 2 {
		return ""
	}
	cols, rows := m.PlotSize()
	c := canvas.New(cols, rows, canvas.WithViewWidth(cols), canvas.WithViewHeight(rows))
	occupied := make([][]bool, rows)
	for i := range occupied {
		occupied[i] = make([]bool, cols)
	}

	for _, p := range m.paths {
		m.drawPath(&c, occupied, p)
	}
	m.drawSelection(&c, occupied)
	m.drawCursor(&c, occupied)
	m.drawMarkers(&c, cols, rows)

	lines := strings.Split(c.View(), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	if len(m.paths) == 0 && m.emptyMessage != "" {
		mid := rows / 2
		if mid < len(lines) {
			lines[mid] = strings.Split(charts.RenderCentered(cols, 1, m.styles.Muted.Render(m.emptyMessage)), "\n")[0]
		}
	}

	lines = charts.ApplyYAxisLabels(lines, m.yLabels(rows), YLabelWidth, m.styles.Label)
	lines = append(lines, strings.Repeat(" ", YLabelWidth+1)+m.styles.Label.Render(m.xLabelLine(cols)))
	return strings.Join(lines, "\n")
}

func (m Model) yLabels(rows int) map[int]string {
	labels := make(map[int]string)
	if !m.hasScales {
		return labels
	}
	for _, v := range m.scales.Y.Ticks(max(rows/3, 2)) {
		row := int(math.Floor(m.scales.Y.Apply(v) / DotsY))
		if row >= 0 && row < rows {
			labels[row] = format.Value(v)
		}
	}
	return labels
}

func (m Model) xLabelLine(cols int) string {
	if !m.hasScales || m.xFormatter == nil {
		return strings.Repeat(" ", cols)
	}
	ticks, step := m.scales.X.TimeTicks(max(cols/14, 2))
	columns := make([]int, 0, len(ticks))
	labels := make([]string, 0, len(ticks))
	for _, v := range ticks {
		col := int(math.Floor(m.scales.X.Apply(v) / DotsX))
		if col < 0 || col >= cols {
			continue
		}
		columns = append(columns, col)
		labels = append(labels, m.xFormatter(v, step))
	}
	return charts.PlaceLabels(cols, columns, labels)
}

func (m Model) drawPath(c *canvas.Model, occupied [][]bool, p render.RenderedPath) {
	rows := len(occupied)
	if rows == 0 {
		return
	}
	cols := len(occupied[0])
	w, h := float64(cols*DotsX), float64(rows*DotsY)
	grid := graph.NewBrailleGrid(cols, rows, 0, w, 0, h)

	// Engine pixels grow downwards; the braille grid is cartesian.
	toGrid := func(pt render.Point) canvas.Point {
		return grid.GridPoint(canvas.Float64Point{X: pt.X, Y: h - pt.Y})
	}
	drawn := false
	for _, seg := range p.Segments {
		if len(seg) == 1 {
			if inside(seg[0], w, h) {
				grid.Set(toGrid(seg[0]))
				drawn = true
			}
			continue
		}
		for i := 1; i < len(seg); i++ {
			a, b, ok := clip(seg[i-1], seg[i], w, h)
			if !ok {
				continue
			}
			drawLine(grid, toGrid(a), toGrid(b))
			drawn = true
		}
	}
	if !drawn {
		return
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color))
	for y, row := range grid.BraillePatterns() {
		for x, r := range row {
			if y >= rows || x >= cols || r == 0 || r == runes.BrailleBlockOffset {
				continue
			}
			// Later channels replace earlier ones in a shared cell.
			c.SetCell(canvas.Point{X: x, Y: y}, canvas.NewCellWithStyle(r, style))
			occupied[y][x] = true
		}
	}
}

func (m Model) drawSelection(c *canvas.Model, occupied [][]bool) {
	if m.rect == nil || len(occupied) == 0 {
		return
	}
	cols := len(occupied[0])
	left := int(math.Floor(m.rect.Left() / DotsX))
	right := int(math.Floor(m.rect.Right() / DotsX))
	for y := range occupied {
		for x := max(left, 0); x <= min(right, cols-1); x++ {
			if occupied[y][x] {
				continue
			}
			r := ' '
			if x == left || x == right {
				r = '┆'
			}
			c.SetCell(canvas.Point{X: x, Y: y}, canvas.NewCellWithStyle(r, m.styles.Selection))
		}
	}
}

func (m Model) drawCursor(c *canvas.Model, occupied [][]bool) {
	if !m.cursorOn || len(occupied) == 0 || m.cursorCol < 0 || m.cursorCol >= len(occupied[0]) {
		return
	}
	for y := range occupied {
		if !occupied[y][m.cursorCol] {
			c.SetCell(canvas.Point{X: m.cursorCol, Y: y}, canvas.NewCellWithStyle('│', m.styles.Cursor))
		}
	}
}

func (m Model) drawMarkers(c *canvas.Model, cols, rows int) {
	if !m.hasScales {
		return
	}
	for _, p := range m.markers {
		x := int(math.Floor(m.scales.X.Apply(p.T) / DotsX))
		y := int(math.Floor(m.scales.Y.Apply(p.V) / DotsY))
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		c.SetCell(canvas.Point{X: x, Y: y}, canvas.NewCellWithStyle(MarkerRune, m.styles.Marker))
	}
}

func inside(p render.Point, w, h float64) bool {
	return p.X >= 0 && p.X <= w && p.Y >= 0 && p.Y <= h
}

// clip trims the segment a-b to the [0,w]x[0,h] box (Liang-Barsky).
func clip(a, b render.Point, w, h float64) (render.Point, render.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X},
		{dx, w - a.X},
		{-dy, a.Y},
		{dy, h - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	return render.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		render.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

// drawLine rasterises a segment with Bresenham's algorithm.
func drawLine(grid *graph.BrailleGrid, p1, p2 canvas.Point) {
	dx := abs(p2.X - p1.X)
	dy := abs(p2.Y - p1.Y)
	sx, sy := 1, 1
	if p1.X > p2.X {
		sx = -1
	}
	if p1.Y > p2.Y {
		sy = -1
	}

	err := dx - dy
	x, y := p1.X, p1.Y
	for {
		grid.Set(canvas.Point{X: x, Y: y})
		if x == p2.X && y == p2.Y {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
