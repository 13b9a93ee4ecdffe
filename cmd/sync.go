package cmd

import (
	"github.com/spf13/cobra"

	"github.com/isobin/isobin/internal/orchestrator"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install declared tools and uninstall anything no longer declared",
	Long: `Like install in All mode, but also removes any cached tool that the
manifest no longer declares.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "ignore the cache and reinstall everything")
}

func runSync(cmd *cobra.Command, _ []string) error {
	manifestPath, err := resolveManifestPath()
	if err != nil {
		return err
	}
	declared, err := loadDeclaredManifest(manifestPath)
	if err != nil {
		return err
	}
	ws, err := resolveWorkspace(manifestPath)
	if err != nil {
		return err
	}

	orch, reporter := newOrchestrator()
	defer reporter.Close()

	_, err = orch.Run(cmd.Context(), ws, declared, orchestrator.Options{
		Mode:           orchestrator.All,
		Force:          syncForce,
		AllowUninstall: true,
	})
	return err
}
