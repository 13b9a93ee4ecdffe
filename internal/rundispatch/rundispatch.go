// Package rundispatch resolves an executable name through a workspace's
// bin-map, reinstalling its owning tool first if the declared manifest has
// drifted since the last install, then execs it in place.
package rundispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/isobin/isobin/internal/cache"
	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/orchestrator"
	"github.com/isobin/isobin/internal/pathdiff"
	"github.com/isobin/isobin/internal/workspace"
)

// NotFoundBinDependency is returned when the requested bin name has no entry
// in the workspace's bin-map.
type NotFoundBinDependency struct{ Bin string }

func (e *NotFoundBinDependency) Error() string {
	return fmt.Sprintf("no installed tool provides %q", e.Bin)
}

// NotFoundBinFile is returned when the bin-map names a file that isn't
// present under the workspace, even after a reinstall attempt.
type NotFoundBinFile struct{ Bin string }

func (e *NotFoundBinFile) Error() string {
	return fmt.Sprintf("%q is recorded but its file is missing", e.Bin)
}

// RunFailed wraps a nonzero exit status from the dispatched child process.
type RunFailed struct{ Status int }

func (e *RunFailed) Error() string {
	return fmt.Sprintf("child process exited with status %d", e.Status)
}

// Run resolves bin against ws's bin-map, triggers a targeted reinstall of its
// owning tool if drift is detected against declared, then execs the
// resulting file with args, inheriting stdio. The child's exit status is
// reported as *RunFailed rather than a generic error, so callers can
// propagate it verbatim as the process exit code.
func Run(ctx context.Context, ws *workspace.Workspace, declared *manifest.Manifest, orch *orchestrator.Orchestrator, bin string, args []string) error {
	bm := cache.LenientLoadBinMap(cache.BinMapPath(ws.BaseDir))
	entry, ok := bm.BinDependencies[bin]
	if !ok {
		return &NotFoundBinDependency{Bin: bin}
	}

	if spec, declares := lookupSpec(declared, entry.ProviderKind, entry.Name); declares {
		cached := cache.LenientLoadManifestCache(cache.ManifestCachePath(ws.BaseDir), false)
		drifted, err := driftDetected(ws, entry.ProviderKind, entry.Name, spec, cached)
		if err != nil {
			return fmt.Errorf("checking drift for %q: %w", entry.Name, err)
		}
		if drifted {
			if _, err := orch.Run(ctx, ws, declared, orchestrator.Options{
				Mode:    orchestrator.Only,
				Targets: []manifest.TargetRef{{Provider: entry.ProviderKind, Name: entry.Name}},
			}); err != nil {
				return err
			}
			bm = cache.LenientLoadBinMap(cache.BinMapPath(ws.BaseDir))
			entry, ok = bm.BinDependencies[bin]
			if !ok {
				return &NotFoundBinDependency{Bin: bin}
			}
		}
	}

	binPath := filepath.Join(ws.BaseDir, entry.BinFileName)
	if _, err := os.Stat(binPath); err != nil {
		return &NotFoundBinFile{Bin: bin}
	}

	cmd := exec.CommandContext(ctx, binPath, args...) // #nosec G204 - binPath is our own workspace's resolved executable
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &RunFailed{Status: exitErr.ExitCode()}
	}
	return fmt.Errorf("running %q: %w", bin, err)
}

func lookupSpec(m *manifest.Manifest, kind manifest.ProviderKind, tool string) (manifest.DependencySpec, bool) {
	pm, ok := m.Providers[kind]
	if !ok {
		return manifest.DependencySpec{}, false
	}
	spec, ok := pm[tool]
	return spec, ok
}

// driftDetected compares the declared spec for (kind, tool) against what was
// last committed: a missing or structurally different cache entry is drift
// outright; for a path dependency with no other change, fall back to
// size+mtime comparison against the tool's source tree.
func driftDetected(ws *workspace.Workspace, kind manifest.ProviderKind, tool string, spec manifest.DependencySpec, cached *manifest.Manifest) (bool, error) {
	oldSpec, existed := lookupSpec(cached, kind, tool)
	if !existed || !spec.Detail.Equal(oldSpec.Detail) {
		return true, nil
	}
	if spec.Detail.AbsolutePath == "" {
		return false, nil
	}
	toolHome := filepath.Join(ws.HomeDir(string(kind)), tool)
	changed, _, err := pathdiff.Changed(spec.Detail.AbsolutePath, pathdiff.CachePath(toolHome))
	return changed, err
}
