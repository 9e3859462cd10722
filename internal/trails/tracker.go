package trails

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/trails/internal/monitoring"
	"github.com/google/uuid"
)

// trailNamespace seeds the name-based trail IDs.
var trailNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://velocity.report/trails"))

// Trail is the ordered path of one tracked blob.
type Trail struct {
	// ID is derived from the creation sequence number, start frame and
	// first point, so identical runs produce identical IDs.
	ID         uuid.UUID
	StartFrame int
	Points     []Position
}

// NewTrail starts a trail at p. seq is the tracker's creation counter.
func NewTrail(seq, frame int, p Position) Trail {
	name := strconv.Itoa(seq) + "/" + strconv.Itoa(frame) + "/" +
		strconv.FormatFloat(p.X, 'g', -1, 64) + "," + strconv.FormatFloat(p.Y, 'g', -1, 64)
	return Trail{
		ID:         uuid.NewSHA1(trailNamespace, []byte(name)),
		StartFrame: frame,
		Points:     []Position{p},
	}
}

// Len returns the number of points in the trail.
func (t Trail) Len() int { return len(t.Points) }

// Last returns the newest point.
func (t Trail) Last() Position { return t.Points[len(t.Points)-1] }

// Clone returns a copy that shares no memory with t.
func (t Trail) Clone() Trail {
	t.Points = append([]Position(nil), t.Points...)
	return t
}

// TrackingState is the mutable working set of one tracking run.
//
// Live trails are still extendable; Completed trails left through an exit
// gutter and are never modified again.
type TrackingState struct {
	Live      []Trail
	Completed []Trail

	// Frames counts frames handed to Step, including empty ones.
	Frames int
	// Created counts trails ever created; it seeds trail IDs.
	Created int
}

// Trails returns Completed followed by Live. The trails are not copied.
func (s TrackingState) Trails() []Trail {
	out := make([]Trail, 0, len(s.Completed)+len(s.Live))
	out = append(out, s.Completed...)
	return append(out, s.Live...)
}

// Clone returns a deep copy of the state.
func (s TrackingState) Clone() TrackingState {
	out := s
	out.Live = cloneTrails(s.Live)
	out.Completed = cloneTrails(s.Completed)
	return out
}

func cloneTrails(in []Trail) []Trail {
	if in == nil {
		return nil
	}
	out := make([]Trail, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// Config holds the immutable parameters of a tracking run.
type Config struct {
	Window Window
	Entry  RegionSet
	Exit   RegionSet
	Metric Metric
}

// Validate checks the window and metric. RegionSets are validated when
// they are built.
func (c Config) Validate() error {
	if err := c.Window.Validate(); err != nil {
		return err
	}
	if _, err := ParseMetric(string(c.Metric)); err != nil {
		return &ConfigurationError{Field: "metric", Msg: err.Error()}
	}
	return nil
}

// FrameStats describes what one call to Step did.
type FrameStats struct {
	Frame      int  // zero-based frame index
	Empty      bool // frame carried no candidates
	Candidates int  // candidates offered
	Extended   int  // live trails that received a point
	Created    int  // trails started in an entry gutter
	Discarded  int  // unclaimed candidates outside every entry gutter
	Completed  int  // trails retired into Completed
	Dropped    int  // single-point trails retired without being kept
}

// Metrics accumulates FrameStats over a run.
type Metrics struct {
	Frames          int `json:"frames"`
	EmptyFrames     int `json:"empty_frames"`
	Candidates      int `json:"candidates"`
	PointsExtended  int `json:"points_extended"`
	TrailsCreated   int `json:"trails_created"`
	TrailsCompleted int `json:"trails_completed"`
	TrailsDropped   int `json:"trails_dropped"`
	Discarded       int `json:"discarded"`
	LiveTrails      int `json:"live_trails"`
}

func (m *Metrics) add(s FrameStats, live int) {
	m.Frames++
	if s.Empty {
		m.EmptyFrames++
	}
	m.Candidates += s.Candidates
	m.PointsExtended += s.Extended
	m.TrailsCreated += s.Created
	m.TrailsCompleted += s.Completed
	m.TrailsDropped += s.Dropped
	m.Discarded += s.Discarded
	m.LiveTrails = live
}

// Step advances state by one frame and returns the new state.
//
// Step consumes state: it may extend trail points and filter Live in
// place, so callers must continue from the returned value and take
// state.Clone() to keep a snapshot. Frames must be supplied in temporal
// order.
func Step(cfg Config, state TrackingState, frame []Position) (TrackingState, FrameStats) {
	stats := FrameStats{Frame: state.Frames, Candidates: len(frame)}
	state.Frames++

	// Step 1: an empty frame changes nothing.
	if len(frame) == 0 {
		stats.Empty = true
		return state, stats
	}

	// Step 2: greedy assignment in trail order. Each trail claims its
	// lowest-scoring unclaimed candidate; ties go to the first candidate.
	claimed := make([]bool, len(frame))
	remaining := len(frame)
	for i := range state.Live {
		if remaining == 0 {
			break
		}
		trail := &state.Live[i]
		best := -1
		var bestScore float64
		for j, p := range frame {
			if claimed[j] {
				continue
			}
			score := cfg.Metric.score(*trail, p)
			if best < 0 || score < bestScore {
				best, bestScore = j, score
			}
		}
		claimed[best] = true
		remaining--
		trail.Points = append(trail.Points, frame[best])
		stats.Extended++
	}

	// Step 3: unclaimed candidates inside an entry gutter start new
	// trails; the rest are noise.
	eligible := len(state.Live)
	for j, p := range frame {
		if claimed[j] {
			continue
		}
		if !cfg.Entry.Contains(p, cfg.Window) {
			stats.Discarded++
			continue
		}
		t := NewTrail(state.Created, stats.Frame, p)
		state.Created++
		state.Live = append(state.Live, t)
		stats.Created++
		monitoring.Debugf("frame %d: trail %s created at %v", stats.Frame, t.ID, p)
	}

	// Step 4: retire trails whose newest point is in an exit gutter.
	// Trails born this frame wait until the next frame.
	live := state.Live[:0]
	for i, t := range state.Live {
		if i < eligible && cfg.Exit.Contains(t.Last(), cfg.Window) {
			if t.Len() > 1 {
				state.Completed = append(state.Completed, t)
				stats.Completed++
				monitoring.Debugf("frame %d: trail %s completed with %d points", stats.Frame, t.ID, t.Len())
			} else {
				stats.Dropped++
				monitoring.Debugf("frame %d: trail %s dropped at %v", stats.Frame, t.ID, t.Last())
			}
			continue
		}
		live = append(live, t)
	}
	for i := len(live); i < len(state.Live); i++ {
		state.Live[i] = Trail{}
	}
	state.Live = live

	return state, stats
}

// Tracker owns the TrackingState of one run. It is not safe for
// concurrent use; independent Trackers may run in parallel.
type Tracker struct {
	config  Config
	state   TrackingState
	metrics Metrics
}

// NewTracker validates cfg and returns an empty tracker. An empty Metric
// selects MetricDirected.
func NewTracker(cfg Config) (*Tracker, error) {
	if cfg.Metric == "" {
		cfg.Metric = MetricDirected
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{config: cfg}, nil
}

// Config returns the tracker configuration.
func (t *Tracker) Config() Config { return t.config }

// Update feeds one frame to the tracker.
func (t *Tracker) Update(frame []Position) FrameStats {
	var stats FrameStats
	t.state, stats = Step(t.config, t.state, frame)
	t.metrics.add(stats, len(t.state.Live))
	return stats
}

// Trails returns copies of the completed trails followed by the live ones.
func (t *Tracker) Trails() []Trail {
	return cloneTrails(t.state.Trails())
}

// State returns a deep copy of the current state.
func (t *Tracker) State() TrackingState {
	return t.state.Clone()
}

// Metrics returns the cumulative per-run counters.
func (t *Tracker) Metrics() Metrics {
	return t.metrics
}

// Reset clears all trails and counters.
func (t *Tracker) Reset() {
	t.state = TrackingState{}
	t.metrics = Metrics{}
}

// Track runs a fresh tracker over frames and returns its trails.
func Track(cfg Config, frames [][]Position) ([]Trail, error) {
	tr, err := NewTracker(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker: %w", err)
	}
	for _, f := range frames {
		tr.Update(f)
	}
	return tr.Trails(), nil
}
