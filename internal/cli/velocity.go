package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/trailio"
	"github.com/banshee-data/trails/internal/units"
	"github.com/banshee-data/trails/internal/velocity"
)

type velocityOptions struct {
	configPath string
	format     string
	span       int
	asJSON     bool
	units      string
	scale      units.Scale
}

// VelocityCmd returns the velocity command
func VelocityCmd(fsys fsutil.FileSystem) *cobra.Command {
	var opts velocityOptions
	cmd := &cobra.Command{
		Use:   "velocity <trail_file>",
		Short: "Summarise per-frame blob velocities from a trail dump",
		Long: `Pair each trail point with the point --span frames later and report the
resulting velocities in pixels per frame.

Examples:
  trails velocity run1_trails.py
  trails velocity run1_trails.json --span 3 --json
  trails velocity run1_trails.py --units kph --fps 25 --metres-per-pixel 0.02`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVelocity(cmd.OutOrStdout(), fsys, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Tracking config JSON supplying velocity_span_frames")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Input format: legacy or json (default from the file extension)")
	cmd.Flags().IntVar(&opts.span, "span", 0, "Frames between paired points (default from config)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().StringVarP(&opts.units, "units", "u", units.PXF, "Speed units: "+units.GetValidUnitsString())
	cmd.Flags().Float64Var(&opts.scale.FPS, "fps", 0, "Capture frame rate, required for all units but pxf")
	cmd.Flags().Float64Var(&opts.scale.MetresPerPixel, "metres-per-pixel", 0, "Ground distance of one pixel, required for mps, mph and kph")
	return cmd
}

func runVelocity(w io.Writer, fsys fsutil.FileSystem, input string, opts velocityOptions) error {
	factor, err := opts.scale.Factor(opts.units)
	if err != nil {
		return fmt.Errorf("--units: %w", err)
	}
	cfg, err := loadConfig(fsys, opts.configPath)
	if err != nil {
		return err
	}
	span := cfg.GetVelocitySpanFrames()
	if opts.span != 0 {
		span = opts.span
	}

	format := trailio.FormatFromPath(input)
	if opts.format != "" {
		if format, err = trailio.ParseFormat(opts.format); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}

	dump, err := trailio.Load(fsys, input, format)
	if err != nil {
		return err
	}
	samples, err := velocity.Samples(dump.Trails, span)
	if err != nil {
		return err
	}
	sum := velocity.Summarize(samples).Scaled(factor)

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	printVelocitySummary(w, sum, len(dump.Trails), span, units.Label(opts.units))
	return nil
}

func printVelocitySummary(w io.Writer, s velocity.Summary, trailCount, span int, unit string) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s from %s %s, span %d\n", bold.Sprint("Samples:"),
		humanize.Comma(int64(s.Count)), humanize.Comma(int64(trailCount)), plural(trailCount, "trail"), span)
	if s.Count == 0 {
		fmt.Fprintln(w, color.New(color.FgYellow).Sprint("no trail is long enough for this span"))
		return
	}
	fmt.Fprintf(w, "%s u=%.2f v=%.2f %s\n", bold.Sprint("Mean:   "), s.MeanU, s.MeanV, unit)
	fmt.Fprintf(w, "%s mean=%.2f sd=%.2f median=%.2f p95=%.2f max=%.2f %s\n",
		bold.Sprint("Speed:  "), s.MeanSpeed, s.StdDevSpeed, s.MedianSpeed, s.P95Speed, s.MaxSpeed, unit)
}
