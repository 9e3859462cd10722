package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trails/internal/centroids"
	"github.com/banshee-data/trails/internal/config"
	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/monitoring"
	"github.com/banshee-data/trails/internal/timeutil"
	"github.com/banshee-data/trails/internal/trailio"
	"github.com/banshee-data/trails/internal/trails"
)

// clock times extraction runs; tests replace it.
var clock timeutil.Clock = timeutil.RealClock{}

// OutputSuffix is appended to the centroid file stem when --output is not
// given.
const OutputSuffix = "_trails"

type extractOptions struct {
	gutters gutterFlags
	output  string
	format  string
	metric  string
}

// ExtractCmd returns the extract command
func ExtractCmd(fsys fsutil.FileSystem) *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract <centroid_file>",
		Short: "Track blobs through a centroid dump and write the trails",
		Long: `Read a centroid dump one frame at a time, link centroids into trails and
write every completed and still-live trail to the output file.

Examples:
  trails extract run1.txt                            # writes run1_trails.py
  trails extract run1.txt --format json -o run1.json
  trails extract run1.txt --entry right=40 --entry top=20 --exit left=60
  trails extract run1.txt --metric euclidean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.OutOrStdout(), fsys, args[0], opts)
		},
	}
	opts.gutters.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default <centroid_file stem>"+OutputSuffix+")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: legacy or json")
	cmd.Flags().StringVarP(&opts.metric, "metric", "m", "", "Distance metric: directed or euclidean")
	return cmd
}

// resolve merges the config file with the command line overrides.
func (o extractOptions) resolve(fsys fsutil.FileSystem) (*config.TrackingConfig, error) {
	cfg, err := o.gutters.load(fsys)
	if err != nil {
		return nil, err
	}
	if o.metric != "" {
		m, err := trails.ParseMetric(o.metric)
		if err != nil {
			return nil, fmt.Errorf("--metric: %w", err)
		}
		s := string(m)
		cfg.Metric = &s
	}
	format := o.format
	if format == "" && o.output != "" && trailio.FormatFromPath(o.output) == trailio.FormatJSON {
		format = string(trailio.FormatJSON)
	}
	if format != "" {
		f, err := trailio.ParseFormat(format)
		if err != nil {
			return nil, fmt.Errorf("--format: %w", err)
		}
		s := string(f)
		cfg.OutputFormat = &s
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultOutput derives the output path from the centroid file name.
func defaultOutput(input string, f trailio.Format) string {
	out := strings.TrimSuffix(input, filepath.Ext(input)) + OutputSuffix
	if f == trailio.FormatJSON {
		out += ".json"
	}
	return out
}

func runExtract(w io.Writer, fsys fsutil.FileSystem, input string, opts extractOptions) error {
	cfg, err := opts.resolve(fsys)
	if err != nil {
		return err
	}

	in, err := fsys.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open centroid file: %w", err)
	}
	defer in.Close()

	rd := centroids.NewReader(in)
	header, err := rd.Header()
	if err != nil {
		return err
	}
	tc, err := cfg.TrackerConfig(header.Window)
	if err != nil {
		return err
	}
	tracker, err := trails.NewTracker(tc)
	if err != nil {
		return err
	}
	monitoring.Debugf("window %v, entry %s, exit %s, metric %s", tc.Window, tc.Entry, tc.Exit, tc.Metric)

	start := clock.Now()
	for {
		frame, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		tracker.Update(frame.Centroids)
	}
	elapsed := clock.Since(start)

	format := cfg.GetOutputFormat()
	out := opts.output
	if out == "" {
		out = defaultOutput(input, format)
	}
	out = trailio.OutputPath(out, format)
	if filepath.Clean(out) == filepath.Clean(input) {
		return fmt.Errorf("output %s would overwrite the centroid file", out)
	}

	window := header.Window
	result := tracker.Trails()
	if err := trailio.Save(fsys, out, format, trailio.Dump{Window: &window, Trails: result}); err != nil {
		return err
	}
	m := tracker.Metrics()
	monitoring.Logf("extract: %s frames from %s in %v", humanize.Comma(int64(m.Frames)), input, elapsed.Round(time.Millisecond))

	printExtractSummary(w, m, len(result), out)
	return nil
}

func printExtractSummary(w io.Writer, m trails.Metrics, written int, path string) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Frames:    "), humanize.Comma(int64(m.Frames)))
	if m.EmptyFrames > 0 {
		fmt.Fprintf(w, "%s %s\n", bold.Sprint("Empty:     "), humanize.Comma(int64(m.EmptyFrames)))
	}
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Centroids: "), humanize.Comma(int64(m.Candidates)))
	fmt.Fprintf(w, "%s %s completed, %s live, %s dropped\n",
		bold.Sprint("Trails:    "),
		green.Sprint(humanize.Comma(int64(m.TrailsCompleted))),
		yellow.Sprint(humanize.Comma(int64(m.LiveTrails))),
		humanize.Comma(int64(m.TrailsDropped)))
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Discarded: "), humanize.Comma(int64(m.Discarded)))
	fmt.Fprintf(w, "Wrote %s %s to %s\n", humanize.Comma(int64(written)), plural(written, "trail"), path)
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
