package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/trails/internal/cli"
	"github.com/banshee-data/trails/internal/fsutil"
)

func main() {
	rootCmd := cli.NewRootCmd(fsutil.OSFileSystem{})
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
