package cmd

import (
	"os"
	"path/filepath"

	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/orchestrator"
	"github.com/isobin/isobin/internal/progress"
	"github.com/isobin/isobin/internal/provider"
	"github.com/isobin/isobin/internal/provider/cargo"
	"github.com/isobin/isobin/internal/workspace"
)

// loadDeclaredManifest loads and validates the manifest at path.
func loadDeclaredManifest(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// resolveWorkspace maps manifestPath's containing directory to its
// persistent workspace handle.
func resolveWorkspace(manifestPath string) (*workspace.Workspace, error) {
	reg, err := workspace.NewRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Resolve(filepath.Dir(manifestPath))
}

// providers returns the full set of provider back-ends this build ships.
func providers() map[manifest.ProviderKind]provider.Provider {
	return map[manifest.ProviderKind]provider.Provider{
		manifest.Cargo: cargo.New(),
	}
}

// newOrchestrator wires an Orchestrator against every provider and a
// reporter selected per the --quiet flag and whether stderr is a terminal.
func newOrchestrator() (*orchestrator.Orchestrator, progress.Reporter) {
	reporter := progress.Select(quietFlag, os.Stderr)
	return orchestrator.New(providers(), reporter), reporter
}
