package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/trailio"
	"github.com/banshee-data/trails/internal/trails"
	"github.com/banshee-data/trails/internal/velocity"
)

// DefaultConfigPath is the path to the canonical tracking defaults file.
const DefaultConfigPath = "config/tracking.defaults.json"

// GutterConfig gives a width in pixels per window boundary. Unset
// boundaries have no gutter.
type GutterConfig struct {
	Left   *float64 `json:"left,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
}

// TrackingConfig is the root configuration for a trail extraction run.
// Fields omitted from the JSON fall back to the Get* defaults.
type TrackingConfig struct {
	// EntryGutters are where new trails may start.
	EntryGutters *GutterConfig `json:"entry_gutters,omitempty"`
	// ExitGutters are where trails are retired.
	ExitGutters *GutterConfig `json:"exit_gutters,omitempty"`

	Metric             *string `json:"metric,omitempty"`
	VelocitySpanFrames *int    `json:"velocity_span_frames,omitempty"`
	OutputFormat       *string `json:"output_format,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTrackingConfig returns a TrackingConfig with all fields set to nil.
func EmptyTrackingConfig() *TrackingConfig {
	return &TrackingConfig{}
}

// DefaultTrackingConfig returns the built-in defaults with every field set:
// trails enter through a 50px right gutter and leave through a 50px left
// gutter.
func DefaultTrackingConfig() *TrackingConfig {
	return &TrackingConfig{
		EntryGutters:       &GutterConfig{Right: ptrFloat64(50)},
		ExitGutters:        &GutterConfig{Left: ptrFloat64(50)},
		Metric:             ptrString(string(trails.MetricDirected)),
		VelocitySpanFrames: ptrInt(velocity.DefaultSpanFrames),
		OutputFormat:       ptrString(string(trailio.FormatLegacy)),
	}
}

// LoadTrackingConfig loads a TrackingConfig from a JSON file on disk.
func LoadTrackingConfig(path string) (*TrackingConfig, error) {
	return LoadTrackingConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadTrackingConfigFS loads a TrackingConfig from fsys.
// The file must have a .json extension and be under 1MB.
func LoadTrackingConfigFS(fsys fsutil.FileSystem, path string) (*TrackingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrackingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. Panics if the file cannot be loaded, intended for
// test setup.
func MustLoadDefaultConfig() *TrackingConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTrackingConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TrackingConfig) Validate() error {
	if _, err := c.EntryRegions(); err != nil {
		return fmt.Errorf("entry_gutters: %w", err)
	}
	if _, err := c.ExitRegions(); err != nil {
		return fmt.Errorf("exit_gutters: %w", err)
	}
	if c.Metric != nil {
		if _, err := trails.ParseMetric(*c.Metric); err != nil {
			return fmt.Errorf("metric: %w", err)
		}
	}
	if c.VelocitySpanFrames != nil && *c.VelocitySpanFrames < 1 {
		return fmt.Errorf("velocity_span_frames must be at least 1, got %d", *c.VelocitySpanFrames)
	}
	if c.OutputFormat != nil {
		if _, err := trailio.ParseFormat(*c.OutputFormat); err != nil {
			return fmt.Errorf("output_format: %w", err)
		}
	}
	return nil
}

// EntryRegions returns the entry gutters or the default right=50.
func (c *TrackingConfig) EntryRegions() (trails.RegionSet, error) {
	if c.EntryGutters == nil {
		return trails.NewRegionSet(trails.Gutter{Boundary: trails.BoundaryRight, Width: 50})
	}
	return c.EntryGutters.RegionSet()
}

// ExitRegions returns the exit gutters or the default left=50.
func (c *TrackingConfig) ExitRegions() (trails.RegionSet, error) {
	if c.ExitGutters == nil {
		return trails.NewRegionSet(trails.Gutter{Boundary: trails.BoundaryLeft, Width: 50})
	}
	return c.ExitGutters.RegionSet()
}

// RegionSet converts the configured widths into a trails.RegionSet.
func (g *GutterConfig) RegionSet() (trails.RegionSet, error) {
	var gutters []trails.Gutter
	for _, e := range []struct {
		b trails.Boundary
		w *float64
	}{
		{trails.BoundaryLeft, g.Left},
		{trails.BoundaryRight, g.Right},
		{trails.BoundaryTop, g.Top},
		{trails.BoundaryBottom, g.Bottom},
	} {
		if e.w == nil {
			continue
		}
		if math.IsNaN(*e.w) || *e.w < 0 {
			return trails.RegionSet{}, fmt.Errorf("%s width must be non-negative, got %v", e.b, *e.w)
		}
		gutters = append(gutters, trails.Gutter{Boundary: e.b, Width: *e.w})
	}
	return trails.NewRegionSet(gutters...)
}

// SetGutter sets the width for one boundary.
func (g *GutterConfig) SetGutter(gt trails.Gutter) {
	w := ptrFloat64(gt.Width)
	switch gt.Boundary {
	case trails.BoundaryLeft:
		g.Left = w
	case trails.BoundaryRight:
		g.Right = w
	case trails.BoundaryTop:
		g.Top = w
	case trails.BoundaryBottom:
		g.Bottom = w
	}
}

// GetMetric returns the metric value or the default.
func (c *TrackingConfig) GetMetric() trails.Metric {
	if c.Metric == nil {
		return trails.MetricDirected
	}
	m, err := trails.ParseMetric(*c.Metric)
	if err != nil {
		return trails.MetricDirected
	}
	return m
}

// GetVelocitySpanFrames returns the velocity_span_frames value or the default.
func (c *TrackingConfig) GetVelocitySpanFrames() int {
	if c.VelocitySpanFrames == nil {
		return velocity.DefaultSpanFrames
	}
	return *c.VelocitySpanFrames
}

// GetOutputFormat returns the output_format value or the default.
func (c *TrackingConfig) GetOutputFormat() trailio.Format {
	if c.OutputFormat == nil {
		return trailio.FormatLegacy
	}
	f, err := trailio.ParseFormat(*c.OutputFormat)
	if err != nil {
		return trailio.FormatLegacy
	}
	return f
}

// TrackerConfig builds the tracker configuration for window.
func (c *TrackingConfig) TrackerConfig(window trails.Window) (trails.Config, error) {
	entry, err := c.EntryRegions()
	if err != nil {
		return trails.Config{}, fmt.Errorf("entry_gutters: %w", err)
	}
	exit, err := c.ExitRegions()
	if err != nil {
		return trails.Config{}, fmt.Errorf("exit_gutters: %w", err)
	}
	return trails.Config{
		Window: window,
		Entry:  entry,
		Exit:   exit,
		Metric: c.GetMetric(),
	}, nil
}
