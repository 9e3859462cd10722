package trails

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Boundary names one edge of the observation window.
type Boundary int

const (
	BoundaryLeft Boundary = iota + 1
	BoundaryRight
	BoundaryTop
	BoundaryBottom
)

// Boundaries lists every Boundary in evaluation order.
var Boundaries = []Boundary{BoundaryLeft, BoundaryRight, BoundaryTop, BoundaryBottom}

func (b Boundary) String() string {
	switch b {
	case BoundaryLeft:
		return "left"
	case BoundaryRight:
		return "right"
	case BoundaryTop:
		return "top"
	case BoundaryBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary converts a boundary name into a Boundary.
func ParseBoundary(value string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left":
		return BoundaryLeft, nil
	case "right":
		return BoundaryRight, nil
	case "top":
		return BoundaryTop, nil
	case "bottom":
		return BoundaryBottom, nil
	default:
		return 0, fmt.Errorf("unknown boundary %q", value)
	}
}

// Gutter is a band of the given width along one window boundary.
type Gutter struct {
	Boundary Boundary
	Width    float64
}

// ParseGutter parses "side=width", e.g. "right=50".
func ParseGutter(value string) (Gutter, error) {
	side, width, ok := strings.Cut(value, "=")
	if !ok {
		return Gutter{}, fmt.Errorf("gutter %q: want side=width", value)
	}
	b, err := ParseBoundary(side)
	if err != nil {
		return Gutter{}, fmt.Errorf("gutter %q: %w", value, err)
	}
	wv, err := strconv.ParseFloat(strings.TrimSpace(width), 64)
	if err != nil {
		return Gutter{}, fmt.Errorf("gutter %q: invalid width: %w", value, err)
	}
	return Gutter{Boundary: b, Width: wv}, nil
}

// Contains reports whether p lies inside the gutter of window w.
//
// The Top and Bottom tests mirror the segmentation tool's convention:
// Top matches y > top - width and Bottom matches y < bottom - width.
func (g Gutter) Contains(p Position, w Window) bool {
	switch g.Boundary {
	case BoundaryLeft:
		return p.X < w.Left+g.Width
	case BoundaryRight:
		return p.X > w.Right-g.Width
	case BoundaryTop:
		return p.Y > w.Top-g.Width
	case BoundaryBottom:
		return p.Y < w.Bottom-g.Width
	default:
		return false
	}
}

func (g Gutter) String() string {
	return g.Boundary.String() + "=" + strconv.FormatFloat(g.Width, 'f', -1, 64)
}

// RegionSet is an ordered set of gutters with at most one gutter per
// boundary. The zero value contains no points.
type RegionSet struct {
	gutters []Gutter
}

// NewRegionSet validates gutters and orders them by boundary.
func NewRegionSet(gutters ...Gutter) (RegionSet, error) {
	seen := make(map[Boundary]bool, len(gutters))
	out := make([]Gutter, 0, len(gutters))
	for _, g := range gutters {
		if g.Boundary < BoundaryLeft || g.Boundary > BoundaryBottom {
			return RegionSet{}, &ConfigurationError{Field: "gutter", Msg: fmt.Sprintf("unknown boundary %v", g.Boundary)}
		}
		if math.IsNaN(g.Width) || math.IsInf(g.Width, 0) || g.Width < 0 {
			return RegionSet{}, &ConfigurationError{Field: "gutter." + g.Boundary.String(), Msg: fmt.Sprintf("width must be finite and non-negative, got %v", g.Width)}
		}
		if seen[g.Boundary] {
			return RegionSet{}, &ConfigurationError{Field: "gutter." + g.Boundary.String(), Msg: "boundary listed twice"}
		}
		seen[g.Boundary] = true
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Boundary < out[j].Boundary })
	return RegionSet{gutters: out}, nil
}

// MustRegionSet is NewRegionSet for static definitions. It panics on error.
func MustRegionSet(gutters ...Gutter) RegionSet {
	s, err := NewRegionSet(gutters...)
	if err != nil {
		panic(err)
	}
	return s
}

// Gutters returns a copy of the gutters in evaluation order.
func (s RegionSet) Gutters() []Gutter {
	return append([]Gutter(nil), s.gutters...)
}

// Width returns the gutter width configured for b.
func (s RegionSet) Width(b Boundary) (float64, bool) {
	for _, g := range s.gutters {
		if g.Boundary == b {
			return g.Width, true
		}
	}
	return 0, false
}

// IsEmpty reports whether no gutter is configured.
func (s RegionSet) IsEmpty() bool { return len(s.gutters) == 0 }

// Contains reports whether p lies in any gutter of the set.
//
// Every configured gutter is tested and the results are OR-ed.
func (s RegionSet) Contains(p Position, w Window) bool {
	_, ok := s.Match(p, w)
	return ok
}

// Match returns the first boundary, in evaluation order, whose gutter
// contains p.
func (s RegionSet) Match(p Position, w Window) (Boundary, bool) {
	for _, g := range s.gutters {
		if g.Contains(p, w) {
			return g.Boundary, true
		}
	}
	return 0, false
}

func (s RegionSet) String() string {
	if len(s.gutters) == 0 {
		return "none"
	}
	parts := make([]string, len(s.gutters))
	for i, g := range s.gutters {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

// Zone labels a point against the entry and exit region sets.
type Zone int

const (
	ZoneExit    Zone = -1
	ZoneNeutral Zone = 0
	ZoneEntry   Zone = 1
)

// Classify labels p. Entry membership takes precedence over exit.
func Classify(p Position, entry, exit RegionSet, w Window) Zone {
	switch {
	case entry.Contains(p, w):
		return ZoneEntry
	case exit.Contains(p, w):
		return ZoneExit
	default:
		return ZoneNeutral
	}
}

// ZoneGrid samples an n×n lattice spanning the window and classifies each
// node. Rows run along Y from Top to Bottom, columns along X from Left to
// Right.
func ZoneGrid(w Window, entry, exit RegionSet, n int) ([][]Zone, error) {
	if n < 2 {
		return nil, fmt.Errorf("zone grid needs at least 2 samples per axis, got %d", n)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, n), w.Left, w.Right)
	ys := floats.Span(make([]float64, n), w.Top, w.Bottom)

	grid := make([][]Zone, n)
	for j, y := range ys {
		row := make([]Zone, n)
		for i, x := range xs {
			row[i] = Classify(Position{X: x, Y: y}, entry, exit, w)
		}
		grid[j] = row
	}
	return grid, nil
}
