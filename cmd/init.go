package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty isobin manifest in the current directory",
	Long: `Writes a new isobin.yaml (or the file named by --manifest-path) unless
a manifest already exists in that directory, in which case init refuses
rather than overwrite it.`,
	RunE: runInit,
}

const emptyManifest = "cargo: {}\n"

func runInit(_ *cobra.Command, _ []string) error {
	path := manifestPathFlag
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		path = filepath.Join(cwd, "isobin.yaml")
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving --manifest-path: %w", err)
		}
		path = abs
	}
	dir := filepath.Dir(path)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("an isobin manifest already exists at %s", path)
	}
	for _, name := range manifestCandidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return fmt.Errorf("an isobin manifest already exists in %s", dir)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(emptyManifest), 0o644); err != nil {
		return fmt.Errorf("writing manifest %q: %w", path, err)
	}

	if !quietFlag {
		fmt.Fprintf(os.Stderr, "%s created %s\n", successBullet, path)
	}
	return nil
}
