// Command isx is a thin re-exec shim: invoked as a symlink or copy named
// after an installed tool (e.g. `rg`), it runs that tool in process through
// the same dispatcher `isobin run` uses (internal/rundispatch), so drift
// detection and on-demand reinstall apply to it as they do to an explicit
// `isobin run rg`.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isobin/isobin/internal/orchestrator"
	"github.com/isobin/isobin/internal/provider"
	"github.com/isobin/isobin/internal/provider/cargo"
	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/progress"
	"github.com/isobin/isobin/internal/rundispatch"
	"github.com/isobin/isobin/internal/workspace"
)

func main() {
	os.Exit(run())
}

func run() int {
	bin := filepath.Base(os.Args[0])
	args := os.Args[1:]

	manifestPath, err := findManifest()
	if err != nil {
		fmt.Fprintln(os.Stderr, "isx:", err)
		return 1
	}
	declared, err := manifest.Load(manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "isx:", err)
		return 1
	}
	if err := declared.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "isx:", err)
		return 1
	}

	reg, err := workspace.NewRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, "isx:", err)
		return 1
	}
	ws, err := reg.Resolve(filepath.Dir(manifestPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "isx:", err)
		return 1
	}

	reporter := progress.Select(true, os.Stderr)
	defer reporter.Close()
	orch := orchestrator.New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: cargo.New()}, reporter)

	err = rundispatch.Run(context.Background(), ws, declared, orch, bin, args)
	if err == nil {
		return 0
	}

	var failed *rundispatch.RunFailed
	if errors.As(err, &failed) {
		return failed.Status
	}
	fmt.Fprintln(os.Stderr, "isx:", err)
	return 1
}

var manifestCandidates = []string{"isobin.toml", "isobin.yaml", "isobin.yml", "isobin.json"}

func findManifest() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		for _, name := range manifestCandidates {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no isobin manifest found above %s", dir)
		}
		dir = parent
	}
}
