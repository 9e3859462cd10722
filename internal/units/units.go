// Package units provides shared constants and conversion for blob speed
// units. Trails measure speed in pixels per frame; the other units need the
// capture frame rate and, for ground speeds, the ground distance covered
// by one pixel.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Unit constants
const (
	PXF  = "pxf" // pixels per frame
	PXS  = "pxs" // pixels per second
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PXF, PXS, MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// Scale describes the capture geometry.
type Scale struct {
	// FPS is the capture frame rate.
	FPS float64
	// MetresPerPixel is the ground distance covered by one pixel.
	MetresPerPixel float64
}

// Factor returns the multiplier that converts pixels per frame to unit.
func (s Scale) Factor(unit string) (float64, error) {
	if unit == PXF {
		return 1, nil
	}
	if !IsValid(unit) {
		return 0, fmt.Errorf("invalid units %q, must be one of: %s", unit, GetValidUnitsString())
	}
	if !(s.FPS > 0) || math.IsInf(s.FPS, 0) {
		return 0, fmt.Errorf("units %s need a positive frame rate, got %v", unit, s.FPS)
	}
	if unit == PXS {
		return s.FPS, nil
	}
	if !(s.MetresPerPixel > 0) || math.IsInf(s.MetresPerPixel, 0) {
		return 0, fmt.Errorf("units %s need a positive metres-per-pixel scale, got %v", unit, s.MetresPerPixel)
	}
	return ConvertSpeed(s.FPS*s.MetresPerPixel, unit), nil
}

// ConvertSpeed converts a speed from meters per second to the target units
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// Label returns the display suffix for unit.
func Label(unit string) string {
	switch unit {
	case PXF:
		return "px/frame"
	case PXS:
		return "px/s"
	case MPS:
		return "m/s"
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	default:
		return unit
	}
}
