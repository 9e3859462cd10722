package trails

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = Window{Left: 0, Right: 100, Top: 0, Bottom: 50}

func TestGutterContains(t *testing.T) {
	tests := []struct {
		name   string
		gutter Gutter
		p      Position
		want   bool
	}{
		{"left inside", Gutter{BoundaryLeft, 10}, Position{5, 25}, true},
		{"left on edge", Gutter{BoundaryLeft, 10}, Position{10, 25}, false},
		{"left outside", Gutter{BoundaryLeft, 10}, Position{85, 25}, false},
		{"right inside", Gutter{BoundaryRight, 10}, Position{95, 25}, true},
		{"right on edge", Gutter{BoundaryRight, 10}, Position{90, 25}, false},
		{"top matches y above top-width", Gutter{BoundaryTop, 10}, Position{50, 0}, true},
		{"top rejects y below top-width", Gutter{BoundaryTop, 10}, Position{50, -20}, false},
		{"bottom matches y below bottom-width", Gutter{BoundaryBottom, 10}, Position{50, 30}, true},
		{"bottom rejects y past bottom-width", Gutter{BoundaryBottom, 10}, Position{50, 45}, false},
		{"zero width left", Gutter{BoundaryLeft, 0}, Position{0, 25}, false},
		{"unknown boundary", Gutter{Boundary(42), 10}, Position{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gutter.Contains(tt.p, testWindow))
		})
	}
}

func TestRegionSet_ContainsIsLogicalOr(t *testing.T) {
	set := MustRegionSet(Gutter{BoundaryRight, 10}, Gutter{BoundaryLeft, 10})

	assert.True(t, set.Contains(Position{5, 25}, testWindow), "left gutter")
	assert.True(t, set.Contains(Position{95, 25}, testWindow), "right gutter")
	assert.False(t, set.Contains(Position{50, 25}, testWindow), "centre")

	b, ok := set.Match(Position{95, 25}, testWindow)
	require.True(t, ok)
	assert.Equal(t, BoundaryRight, b)
}

func TestRegionSet_EmptyContainsNothing(t *testing.T) {
	var set RegionSet
	assert.True(t, set.IsEmpty())
	assert.False(t, set.Contains(Position{0, 0}, testWindow))
	assert.Equal(t, "none", set.String())
}

func TestNewRegionSet_OrdersAndValidates(t *testing.T) {
	set, err := NewRegionSet(Gutter{BoundaryBottom, 1}, Gutter{BoundaryLeft, 2})
	require.NoError(t, err)
	assert.Equal(t, []Gutter{{BoundaryLeft, 2}, {BoundaryBottom, 1}}, set.Gutters())
	assert.Equal(t, "left=2,bottom=1", set.String())

	w, ok := set.Width(BoundaryBottom)
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)
	_, ok = set.Width(BoundaryTop)
	assert.False(t, ok)

	bad := [][]Gutter{
		{{BoundaryLeft, -1}},
		{{BoundaryLeft, math.NaN()}},
		{{BoundaryLeft, math.Inf(1)}},
		{{BoundaryLeft, 1}, {BoundaryLeft, 2}},
		{{Boundary(0), 1}},
	}
	for _, gutters := range bad {
		_, err := NewRegionSet(gutters...)
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(err, &cfgErr), "gutters %v: err = %v", gutters, err)
	}
}

func TestParseBoundaryAndGutter(t *testing.T) {
	for _, b := range Boundaries {
		got, err := ParseBoundary(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	got, err := ParseBoundary("  RIGHT ")
	require.NoError(t, err)
	assert.Equal(t, BoundaryRight, got)

	_, err = ParseBoundary("north")
	assert.Error(t, err)

	g, err := ParseGutter("right=50")
	require.NoError(t, err)
	assert.Equal(t, Gutter{BoundaryRight, 50}, g)
	assert.Equal(t, "right=50", g.String())

	for _, bad := range []string{"right", "north=5", "left=wide"} {
		_, err := ParseGutter(bad)
		assert.Error(t, err, bad)
	}
}

func TestClassify_EntryTakesPrecedence(t *testing.T) {
	entry := MustRegionSet(Gutter{BoundaryRight, 10})
	exit := MustRegionSet(Gutter{BoundaryRight, 20}, Gutter{BoundaryLeft, 10})

	assert.Equal(t, ZoneEntry, Classify(Position{95, 25}, entry, exit, testWindow))
	assert.Equal(t, ZoneExit, Classify(Position{85, 25}, entry, exit, testWindow))
	assert.Equal(t, ZoneExit, Classify(Position{5, 25}, entry, exit, testWindow))
	assert.Equal(t, ZoneNeutral, Classify(Position{50, 25}, entry, exit, testWindow))
}

func TestZoneGrid(t *testing.T) {
	entry := MustRegionSet(Gutter{BoundaryRight, 10})
	exit := MustRegionSet(Gutter{BoundaryLeft, 10})

	grid, err := ZoneGrid(testWindow, entry, exit, 5)
	require.NoError(t, err)
	require.Len(t, grid, 5)
	for _, row := range grid {
		// xs = 0, 25, 50, 75, 100
		assert.Equal(t, []Zone{ZoneExit, ZoneNeutral, ZoneNeutral, ZoneNeutral, ZoneEntry}, row)
	}

	_, err = ZoneGrid(testWindow, entry, exit, 1)
	assert.Error(t, err)
	_, err = ZoneGrid(Window{Left: 1, Right: 0, Top: 0, Bottom: 1}, entry, exit, 3)
	assert.Error(t, err)
}
