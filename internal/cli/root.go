// Package cli implements the trails command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/trails/internal/config"
	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/monitoring"
	"github.com/banshee-data/trails/internal/trails"
	"github.com/banshee-data/trails/internal/version"
)

// NewRootCmd returns the trails root command with every subcommand
// attached. All file access goes through fsys.
func NewRootCmd(fsys fsutil.FileSystem) *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:     "trails",
		Short:   "Extract blob trails from per-frame centroid dumps",
		Version: version.String(),
		Long: `trails links the blob centroids detected in successive video frames
into trails. Trails start in the entry gutters of the observation window
and are retired once they reach an exit gutter.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			monitoring.SetDebug(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-trail lifecycle events")

	rootCmd.AddCommand(ExtractCmd(fsys))
	rootCmd.AddCommand(VelocityCmd(fsys))
	rootCmd.AddCommand(RegionsCmd(fsys))
	rootCmd.AddCommand(VersionCmd())
	return rootCmd
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "trails "+version.String())
		},
	}
}

// gutterFlags are the region overrides shared by extract and regions.
type gutterFlags struct {
	configPath string
	entry      []string
	exit       []string
}

func (g *gutterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&g.configPath, "config", "c", "", "Tracking config JSON (default "+config.DefaultConfigPath+" if present)")
	cmd.Flags().StringArrayVar(&g.entry, "entry", nil, "Entry gutter as side=width; repeatable, replaces the configured set")
	cmd.Flags().StringArrayVar(&g.exit, "exit", nil, "Exit gutter as side=width; repeatable, replaces the configured set")
}

// load reads the tracking config and applies the gutter overrides.
func (g *gutterFlags) load(fsys fsutil.FileSystem) (*config.TrackingConfig, error) {
	cfg, err := loadConfig(fsys, g.configPath)
	if err != nil {
		return nil, err
	}
	if len(g.entry) > 0 {
		if cfg.EntryGutters, err = parseGutters(g.entry); err != nil {
			return nil, fmt.Errorf("--entry: %w", err)
		}
	}
	if len(g.exit) > 0 {
		if cfg.ExitGutters, err = parseGutters(g.exit); err != nil {
			return nil, fmt.Errorf("--exit: %w", err)
		}
	}
	return cfg, nil
}

// loadConfig loads path, or the defaults file when path is empty and the
// file exists, or the built-in defaults.
func loadConfig(fsys fsutil.FileSystem, path string) (*config.TrackingConfig, error) {
	if path == "" {
		if !fsutil.Exists(fsys, config.DefaultConfigPath) {
			return config.DefaultTrackingConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	cfg, err := config.LoadTrackingConfigFS(fsys, path)
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("loaded tracking config from %s", path)
	return cfg, nil
}

func parseGutters(values []string) (*config.GutterConfig, error) {
	g := &config.GutterConfig{}
	seen := make(map[trails.Boundary]bool, len(values))
	for _, v := range values {
		gt, err := trails.ParseGutter(v)
		if err != nil {
			return nil, err
		}
		if seen[gt.Boundary] {
			return nil, fmt.Errorf("gutter %q: boundary %s given more than once", v, gt.Boundary)
		}
		seen[gt.Boundary] = true
		g.SetGutter(gt)
	}
	return g, nil
}
