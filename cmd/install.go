package cmd

import (
	"github.com/spf13/cobra"

	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/orchestrator"
)

var (
	installForce      bool
	installCargoNames []string
)

var installCmd = &cobra.Command{
	Use:   "install [TARGET...]",
	Short: "Install every declared tool, or just the named targets",
	Long: `Diffs the declared manifest against the workspace cache and installs
whatever is new or changed. With no targets, every declared tool is in
scope. With targets (positional names and/or --cargo), only those tools are
considered — install never removes a tool on its own; use sync for that.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "ignore the cache and reinstall everything in scope")
	installCmd.Flags().StringArrayVar(&installCargoNames, "cargo", nil, "install only this cargo tool (repeatable)")
}

func runInstall(cmd *cobra.Command, args []string) error {
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

	opts := orchestrator.Options{Mode: orchestrator.All, Force: installForce}

	var targets []manifest.TargetRef
	for _, name := range installCargoNames {
		targets = append(targets, manifest.TargetRef{Provider: manifest.Cargo, Name: name})
	}
	for _, name := range args {
		targets = append(targets, manifest.TargetRef{Name: name})
	}
	if len(targets) > 0 {
		opts.Mode = orchestrator.Only
		opts.Targets = targets
	}

	orch, reporter := newOrchestrator()
	defer reporter.Close()

	_, err = orch.Run(cmd.Context(), ws, declared, opts)
	return err
}
