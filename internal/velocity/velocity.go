// Package velocity derives instantaneous velocities from finished trails.
//
// Velocities are in pixels per frame; converting to physical units is left
// to the consumer.
package velocity

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/trails/internal/trails"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultSpanFrames is the frame distance velocities are measured over.
const DefaultSpanFrames = 5

// Sample is the velocity of a trail measured from At over span frames.
type Sample struct {
	At trails.Position
	U  float64 // px/frame along X
	V  float64 // px/frame along Y
}

// Speed returns the velocity magnitude.
func (s Sample) Speed() float64 {
	return math.Hypot(s.U, s.V)
}

// Samples pairs every point of every trail with the point span frames
// later and returns the resulting velocities. Trails shorter than span+1
// points contribute nothing.
func Samples(ts []trails.Trail, span int) ([]Sample, error) {
	if span < 1 {
		return nil, fmt.Errorf("velocity span must be at least 1 frame, got %d", span)
	}
	dt := float64(span)
	var out []Sample
	for _, t := range ts {
		for i := 0; i+span < len(t.Points); i++ {
			p1, p2 := t.Points[i], t.Points[i+span]
			out = append(out, Sample{
				At: p1,
				U:  (p2.X - p1.X) / dt,
				V:  (p2.Y - p1.Y) / dt,
			})
		}
	}
	return out, nil
}

// Summary aggregates a set of samples.
type Summary struct {
	Count       int     `json:"count"`
	MeanU       float64 `json:"mean_u"`
	MeanV       float64 `json:"mean_v"`
	MeanSpeed   float64 `json:"mean_speed"`
	StdDevSpeed float64 `json:"stddev_speed"`
	MedianSpeed float64 `json:"median_speed"`
	P95Speed    float64 `json:"p95_speed"`
	MaxSpeed    float64 `json:"max_speed"`
}

// Summarize computes summary statistics. An empty input yields a zero
// Summary.
func Summarize(samples []Sample) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}
	us := make([]float64, n)
	vs := make([]float64, n)
	speeds := make([]float64, n)
	for i, s := range samples {
		us[i], vs[i], speeds[i] = s.U, s.V, s.Speed()
	}
	sort.Float64s(speeds)

	sum := Summary{
		Count:       n,
		MeanU:       stat.Mean(us, nil),
		MeanV:       stat.Mean(vs, nil),
		MeanSpeed:   stat.Mean(speeds, nil),
		MedianSpeed: stat.Quantile(0.5, stat.Empirical, speeds, nil),
		P95Speed:    stat.Quantile(0.95, stat.Empirical, speeds, nil),
		MaxSpeed:    floats.Max(speeds),
	}
	if n > 1 {
		sum.StdDevSpeed = stat.StdDev(speeds, nil)
	}
	return sum
}

// Scaled returns s with every velocity and speed multiplied by k, for
// unit conversion. Count is unchanged.
func (s Summary) Scaled(k float64) Summary {
	s.MeanU *= k
	s.MeanV *= k
	s.MeanSpeed *= k
	s.StdDevSpeed *= k
	s.MedianSpeed *= k
	s.P95Speed *= k
	s.MaxSpeed *= k
	return s
}
