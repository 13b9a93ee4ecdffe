package cmd

import (
	"github.com/spf13/cobra"

	"github.com/isobin/isobin/internal/rundispatch"
)

var runCmd = &cobra.Command{
	Use:                "run BIN [ARGS...]",
	Short:              "Run an installed tool's executable, reinstalling it first if it has drifted",
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE:               runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	bin, rest := parseRunArgs(args)

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

	return rundispatch.Run(cmd.Context(), ws, declared, orch, bin, rest)
}

// parseRunArgs splits `isobin run [global flags] BIN [ARGS...]` by hand,
// since flag parsing is disabled on this command so the dispatched tool's
// own flags are never mistaken for isobin's.
func parseRunArgs(args []string) (bin string, rest []string) {
	i := 0
	for i < len(args) {
		switch args[i] {
		case "--quiet":
			quietFlag = true
			i++
			continue
		case "--manifest-path":
			if i+1 < len(args) {
				manifestPathFlag = args[i+1]
				i += 2
				continue
			}
		}
		break
	}
	if i >= len(args) {
		return "", nil
	}
	return args[i], args[i+1:]
}
