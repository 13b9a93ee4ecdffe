package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the workspace's bin/ directory, for PATH integration",
	RunE:  runPath,
}

func runPath(_ *cobra.Command, _ []string) error {
	manifestPath, err := resolveManifestPath()
	if err != nil {
		return err
	}
	ws, err := resolveWorkspace(manifestPath)
	if err != nil {
		return err
	}
	fmt.Println(ws.BinDir())
	return nil
}
