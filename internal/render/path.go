// Package render turns live scales and channel samples into line path
// geometry, on a background worker when one is available.
package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/mathutil"
	"github.com/kpumuk/lazyscope/internal/series"
)

// precision is the number of decimals kept in path coordinates.
const precision = 3

// Point is a position in inner plot pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathData is the geometry of one channel. D is an SVG path string;
// Segments holds the same polylines for painting on a cell canvas.
type PathData struct {
	ID       string    `json:"id"`
	D        string    `json:"d"`
	Segments [][]Point `json:"-"`
}

// Line serializes points as straight segments in the given order. A point
// with a non-finite coordinate ends the current sub-path; the next finite
// point starts a new one. An isolated point is emitted as a closed path.
func Line(points []Point) (string, [][]Point) {
	var (
		b        strings.Builder
		segments [][]Point
		current  []Point
	)
	flush := func() {
		if len(current) == 1 {
			b.WriteByte('Z')
		}
		if len(current) > 0 {
			segments = append(segments, current)
		}
		current = nil
	}
	for _, p := range points {
		if !mathutil.Finite(p.X, p.Y) {
			flush()
			continue
		}
		p = Point{X: mathutil.RoundTo(p.X, precision), Y: mathutil.RoundTo(p.Y, precision)}
		if len(current) == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(',')
		b.WriteString(formatCoord(p.Y))
		current = append(current, p)
	}
	flush()
	return b.String(), segments
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Project maps samples through the scales in arrival order.
func Project(samples []series.Sample, scales graph.Scales) []Point {
	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{X: scales.X.Apply(s.Timestamp), Y: scales.Y.Apply(s.Value)}
	}
	return points
}

// Path is the one geometry routine shared by the worker and the
// synchronous fallback. It validates req, rebuilds the scales from its
// domain and dimensions, and returns one PathData per channel.
func Path(req Request) ([]PathData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	scales := graph.BuildScales(req.Domain.Domain(), req.Viewport())
	order := req.channelOrder()
	out := make([]PathData, 0, len(order))
	for _, id := range order {
		d, segments := Line(Project(req.Series[id], scales))
		out = append(out, PathData{ID: id, D: d, Segments: segments})
	}
	return out, nil
}

// channelOrder returns Order followed by any remaining channels sorted by
// name, so output never depends on map iteration.
func (r Request) channelOrder() []string {
	seen := make(map[string]struct{}, len(r.Order))
	order := make([]string, 0, len(r.Series))
	for _, id := range r.Order {
		if _, ok := r.Series[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	var rest []string
	for id := range r.Series {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
