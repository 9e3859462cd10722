package trails

import "fmt"

// Metric selects how candidates are scored against a live trail.
type Metric string

const (
	// MetricDirected scores single-point trails by EuclideanDistance and
	// longer trails by DirectedDistance.
	MetricDirected Metric = "directed"
	// MetricEuclidean scores every trail by EuclideanDistance from its
	// newest point.
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric converts a metric name into a Metric.
func ParseMetric(value string) (Metric, error) {
	switch Metric(value) {
	case MetricDirected, MetricEuclidean:
		return Metric(value), nil
	case "":
		return MetricDirected, nil
	default:
		return "", fmt.Errorf("unknown metric %q (want %q or %q)", value, MetricDirected, MetricEuclidean)
	}
}

// EuclideanDistance returns the squared Euclidean distance between a and b.
// The root is omitted: scores are only ever ranked.
func EuclideanDistance(a, b Position) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// DirectedDistance scores candidate against the constant-velocity
// extrapolation of trail: expected = last + (last - secondLast).
//
// The trail must hold at least two points; fewer panics with a
// ContractViolation.
func DirectedDistance(trail Trail, candidate Position) float64 {
	n := len(trail.Points)
	if n < 2 {
		panic(ContractViolation{Msg: fmt.Sprintf("directed distance needs at least 2 trail points, got %d", n)})
	}
	last := trail.Points[n-1]
	prev := trail.Points[n-2]
	expected := Position{
		X: last.X + (last.X - prev.X),
		Y: last.Y + (last.Y - prev.Y),
	}
	return EuclideanDistance(expected, candidate)
}

// score routes a trail to the metric appropriate for its length.
func (m Metric) score(trail Trail, candidate Position) float64 {
	if m == MetricEuclidean || len(trail.Points) < 2 {
		return EuclideanDistance(trail.Last(), candidate)
	}
	return DirectedDistance(trail, candidate)
}
