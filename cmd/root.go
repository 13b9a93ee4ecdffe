// Package cmd wires the isobin CLI: manifest-path resolution, workspace
// resolution, and the install/sync/path/clean/run/init subcommands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	manifestPathFlag string
	quietFlag        bool
)

var rootCmd = &cobra.Command{
	Use:           "isobin",
	Short:         "Per-project binary-tool installer",
	Long:          `isobin installs declared command-line tools into an isolated, per-project workspace and exposes them through a shared bin/ directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPathFlag, "manifest-path", "", "path to the isobin manifest (default: search upward from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "suppress interactive progress output")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
}
