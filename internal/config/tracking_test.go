package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/trailio"
	"github.com/banshee-data/trails/internal/trails"
)

func TestDefaultTrackingConfig(t *testing.T) {
	cfg := DefaultTrackingConfig()

	if cfg.EntryGutters == nil || cfg.EntryGutters.Right == nil || *cfg.EntryGutters.Right != 50 {
		t.Errorf("Expected entry right gutter 50, got %+v", cfg.EntryGutters)
	}
	if cfg.ExitGutters == nil || cfg.ExitGutters.Left == nil || *cfg.ExitGutters.Left != 50 {
		t.Errorf("Expected exit left gutter 50, got %+v", cfg.ExitGutters)
	}
	if cfg.GetMetric() != trails.MetricDirected {
		t.Errorf("GetMetric() = %s, want directed", cfg.GetMetric())
	}
	if cfg.GetVelocitySpanFrames() != 5 {
		t.Errorf("GetVelocitySpanFrames() = %d, want 5", cfg.GetVelocitySpanFrames())
	}
	if cfg.GetOutputFormat() != trailio.FormatLegacy {
		t.Errorf("GetOutputFormat() = %s, want legacy", cfg.GetOutputFormat())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestEmptyConfigFallsBackToDefaults(t *testing.T) {
	cfg := EmptyTrackingConfig()

	entry, err := cfg.EntryRegions()
	if err != nil {
		t.Fatalf("EntryRegions failed: %v", err)
	}
	if entry.String() != "right=50" {
		t.Errorf("entry = %s, want right=50", entry)
	}
	exit, err := cfg.ExitRegions()
	if err != nil {
		t.Fatalf("ExitRegions failed: %v", err)
	}
	if exit.String() != "left=50" {
		t.Errorf("exit = %s, want left=50", exit)
	}
	if cfg.GetVelocitySpanFrames() != 5 || cfg.GetMetric() != trails.MetricDirected || cfg.GetOutputFormat() != trailio.FormatLegacy {
		t.Error("getters did not return defaults for an empty config")
	}
}

func TestLoadTrackingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "entry_gutters": {"right": 10, "top": 5},
  "exit_gutters": {"left": 10},
  "metric": "euclidean",
  "velocity_span_frames": 3,
  "output_format": "json"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTrackingConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	entry, _ := cfg.EntryRegions()
	if entry.String() != "right=10,top=5" {
		t.Errorf("entry = %s, want right=10,top=5", entry)
	}
	if cfg.GetMetric() != trails.MetricEuclidean {
		t.Errorf("GetMetric() = %s, want euclidean", cfg.GetMetric())
	}
	if cfg.GetVelocitySpanFrames() != 3 {
		t.Errorf("GetVelocitySpanFrames() = %d, want 3", cfg.GetVelocitySpanFrames())
	}
	if cfg.GetOutputFormat() != trailio.FormatJSON {
		t.Errorf("GetOutputFormat() = %s, want json", cfg.GetOutputFormat())
	}

	tc, err := cfg.TrackerConfig(trails.Window{Left: 0, Right: 100, Top: 0, Bottom: 50})
	if err != nil {
		t.Fatalf("TrackerConfig failed: %v", err)
	}
	if _, err := trails.NewTracker(tc); err != nil {
		t.Errorf("tracker rejected loaded config: %v", err)
	}
}

func TestLoadTrackingConfig_PartialKeepsDefaults(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/cfg/partial.json", []byte(`{"metric": "euclidean"}`))

	cfg, err := LoadTrackingConfigFS(mfs, "/cfg/partial.json")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	entry, _ := cfg.EntryRegions()
	if entry.String() != "right=50" {
		t.Errorf("entry = %s, want default right=50", entry)
	}
}

func TestLoadTrackingConfig_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/cfg/bad.json", []byte(`{not json`))
	mfs.WriteFile("/cfg/config.yaml", []byte(`metric: directed`))
	mfs.WriteFile("/cfg/big.json", []byte(`{"metric": "`+strings.Repeat("x", 2*1024*1024)+`"}`))

	tests := []struct {
		name string
		json string
		path string
		want string
	}{
		{"negative gutter", `{"entry_gutters": {"left": -1}}`, "", "entry_gutters"},
		{"unknown metric", `{"metric": "manhattan"}`, "", "metric"},
		{"zero span", `{"velocity_span_frames": 0}`, "", "velocity_span_frames"},
		{"unknown format", `{"output_format": "csv"}`, "", "output_format"},
		{"exit negative", `{"exit_gutters": {"bottom": -3}}`, "", "exit_gutters"},
		{"bad json", "", "/cfg/bad.json", "parse"},
		{"wrong extension", "", "/cfg/config.yaml", ".json extension"},
		{"too large", "", "/cfg/big.json", "too large"},
		{"missing", "", "/cfg/missing.json", "stat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/cfg/" + strings.ReplaceAll(tt.name, " ", "_") + ".json"
				mfs.WriteFile(path, []byte(tt.json))
			}
			_, err := LoadTrackingConfigFS(mfs, path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGutterConfig_SetGutter(t *testing.T) {
	var g GutterConfig
	g.SetGutter(trails.Gutter{Boundary: trails.BoundaryBottom, Width: 7})
	g.SetGutter(trails.Gutter{Boundary: trails.BoundaryLeft, Width: 3})

	set, err := g.RegionSet()
	if err != nil {
		t.Fatalf("RegionSet failed: %v", err)
	}
	if set.String() != "left=3,bottom=7" {
		t.Errorf("set = %s, want left=3,bottom=7", set)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	defaults := DefaultTrackingConfig()

	if cfg.GetMetric() != defaults.GetMetric() {
		t.Errorf("metric = %s, want %s", cfg.GetMetric(), defaults.GetMetric())
	}
	if cfg.GetVelocitySpanFrames() != defaults.GetVelocitySpanFrames() {
		t.Errorf("span = %d, want %d", cfg.GetVelocitySpanFrames(), defaults.GetVelocitySpanFrames())
	}
	got, _ := cfg.EntryRegions()
	want, _ := defaults.EntryRegions()
	if got.String() != want.String() {
		t.Errorf("entry = %s, want %s", got, want)
	}
}
