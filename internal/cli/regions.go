package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trails/internal/centroids"
	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/trails"
)

type regionsOptions struct {
	gutters gutterFlags
	samples int
}

// RegionsCmd returns the regions command
func RegionsCmd(fsys fsutil.FileSystem) *cobra.Command {
	var opts regionsOptions
	cmd := &cobra.Command{
		Use:   "regions <centroid_file>",
		Short: "Show the entry and exit gutters over a dump's window",
		Long: `Sample the observation window of a centroid dump on a grid and mark each
node as entry (E), exit (X) or neutral (.). Entry wins where the two
overlap. Rows run from top to bottom.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd.OutOrStdout(), fsys, args[0], opts)
		},
	}
	opts.gutters.register(cmd)
	cmd.Flags().IntVarP(&opts.samples, "samples", "n", 20, "Grid nodes per axis")
	return cmd
}

func runRegions(w io.Writer, fsys fsutil.FileSystem, input string, opts regionsOptions) error {
	cfg, err := opts.gutters.load(fsys)
	if err != nil {
		return err
	}
	entry, err := cfg.EntryRegions()
	if err != nil {
		return fmt.Errorf("entry_gutters: %w", err)
	}
	exit, err := cfg.ExitRegions()
	if err != nil {
		return fmt.Errorf("exit_gutters: %w", err)
	}

	in, err := fsys.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open centroid file: %w", err)
	}
	defer in.Close()
	header, err := centroids.NewReader(in).Header()
	if err != nil {
		return err
	}

	grid, err := trails.ZoneGrid(header.Window, entry, exit, opts.samples)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "window %v  entry %s  exit %s\n", header.Window, entry, exit)
	fmt.Fprint(w, renderZoneGrid(grid))
	return nil
}

func renderZoneGrid(grid [][]trails.Zone) string {
	entryMark := color.New(color.FgGreen).Sprint("E")
	exitMark := color.New(color.FgRed).Sprint("X")
	var b strings.Builder
	for _, row := range grid {
		for _, z := range row {
			switch z {
			case trails.ZoneEntry:
				b.WriteString(entryMark)
			case trails.ZoneExit:
				b.WriteString(exitMark)
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
