package trails

import (
	"fmt"
	"math"
)

// Position is a blob centroid in pixel coordinates.
type Position struct {
	X float64
	Y float64
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Window is the rectangular extent of valid observation space.
//
// The bounds follow the segmentation window tuple (xMin, xMax, yMin, yMax):
// Left and Right bound X, Top and Bottom bound Y.
type Window struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// NewWindow builds a Window and validates its bounds.
func NewWindow(left, right, top, bottom float64) (Window, error) {
	w := Window{Left: left, Right: right, Top: top, Bottom: bottom}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate reports a ConfigurationError for non-finite or inverted bounds.
func (w Window) Validate() error {
	for _, b := range []struct {
		name string
		v    float64
	}{
		{"window.left", w.Left},
		{"window.right", w.Right},
		{"window.top", w.Top},
		{"window.bottom", w.Bottom},
	} {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return &ConfigurationError{Field: b.name, Msg: fmt.Sprintf("bound must be finite, got %v", b.v)}
		}
	}
	if w.Left >= w.Right {
		return &ConfigurationError{Field: "window", Msg: fmt.Sprintf("left (%g) must be less than right (%g)", w.Left, w.Right)}
	}
	if w.Top >= w.Bottom {
		return &ConfigurationError{Field: "window", Msg: fmt.Sprintf("top (%g) must be less than bottom (%g)", w.Top, w.Bottom)}
	}
	return nil
}

// Width returns Right - Left.
func (w Window) Width() float64 { return w.Right - w.Left }

// Height returns Bottom - Top.
func (w Window) Height() float64 { return w.Bottom - w.Top }

func (w Window) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", w.Left, w.Right, w.Top, w.Bottom)
}

// ConfigurationError reports a malformed tracker configuration. It is only
// returned at construction time, never while frames are being processed.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ContractViolation is the panic value raised when a caller breaks a
// documented precondition. It indicates a programming error.
type ContractViolation struct {
	Msg string
}

func (c ContractViolation) Error() string {
	return "contract violation: " + c.Msg
}
