// Package orchestrator implements the core install/sync state machine:
// diff the declared manifest against the cache, run provider operations
// against a staging copy of the workspace, verify bin-name uniqueness,
// and atomically swap the workspace into place so a failure at any point
// leaves the previous install untouched.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/isobin/isobin/internal/cache"
	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/pathdiff"
	"github.com/isobin/isobin/internal/progress"
	"github.com/isobin/isobin/internal/provider"
	"github.com/isobin/isobin/internal/workspace"
)

// Mode selects which tools from the declared manifest are in scope for this
// run: every declared tool, or only the named subset.
type Mode int

const (
	All Mode = iota
	Only
)

// Options configures one orchestrator run.
type Options struct {
	Mode Mode
	// Targets is consulted only when Mode == Only.
	Targets []manifest.TargetRef
	// Force discards the cached manifest, treating every declared tool as
	// needing install.
	Force bool
	// AllowUninstall permits the uninstall set to be computed and acted on.
	// `install` always passes false; only `sync` passes true — per the
	// fixed contract that install never removes a tool on its own.
	AllowUninstall bool
}

// Orchestrator runs installs against a fixed set of providers.
type Orchestrator struct {
	Providers map[manifest.ProviderKind]provider.Provider
	Reporter  progress.Reporter
}

// New returns an Orchestrator wired to the given providers and reporter.
func New(providers map[manifest.ProviderKind]provider.Provider, reporter progress.Reporter) *Orchestrator {
	return &Orchestrator{Providers: providers, Reporter: reporter}
}

// Run executes one full install/sync cycle against ws, returning the
// manifest that is now committed as the cache on success.
func (o *Orchestrator) Run(ctx context.Context, ws *workspace.Workspace, declared *manifest.Manifest, opts Options) (*manifest.Manifest, error) {
	staging, err := ws.MakeTmpWorkspace()
	if err != nil {
		return nil, fmt.Errorf("preparing staging workspace: %w", err)
	}
	stagingBase := filepath.Join(staging, "base")
	stagingBin := filepath.Join(stagingBase, "bin")

	cachedManifest := cache.LenientLoadManifestCache(cache.ManifestCachePath(stagingBase), opts.Force)

	specified := declared
	if opts.Mode == Only {
		specified = declared.Filter(opts.Targets)
	}

	pathChanged := func(kind manifest.ProviderKind, tool string, detail manifest.DependencyDetail) (bool, error) {
		if detail.AbsolutePath == "" {
			return false, nil
		}
		toolHome := filepath.Join(stagingBase, "home", string(kind), tool)
		changed, _, err := pathdiff.Changed(detail.AbsolutePath, pathdiff.CachePath(toolHome))
		return changed, err
	}

	installSet, err := manifest.DiffNeedInstall(specified, cachedManifest, pathChanged)
	if err != nil {
		_ = workspace.DiscardStaging(staging)
		return nil, fmt.Errorf("diffing install set: %w", err)
	}

	uninstallSet := manifest.NewManifest()
	if opts.AllowUninstall {
		uninstallSet = manifest.DiffNeedUninstall(specified, cachedManifest)
	}

	saveManifest := manifest.Remove(manifest.Merge(cachedManifest, specified), uninstallSet)

	priorBinMap := cache.LenientLoadBinMap(cache.BinMapPath(stagingBase))

	targetsByProvider := classify(specified, installSet, uninstallSet)

	if err := o.execute(ctx, stagingBase, stagingBin, targetsByProvider, priorBinMap); err != nil {
		_ = workspace.DiscardStaging(staging)
		return nil, err
	}

	if err := o.reconcileBinMap(stagingBase, stagingBin, targetsByProvider); err != nil {
		_ = workspace.DiscardStaging(staging)
		return nil, err
	}

	if err := cache.SaveManifestCache(cache.ManifestCachePath(stagingBase), saveManifest); err != nil {
		_ = workspace.DiscardStaging(staging)
		return nil, fmt.Errorf("saving manifest cache: %w", err)
	}

	if err := ws.Commit(stagingBase); err != nil {
		return nil, err
	}
	_ = workspace.DiscardStaging(staging)

	for _, byProvider := range targetsByProvider {
		for _, t := range byProvider {
			p := o.Reporter.MakeProgress(t.Name)
			switch t.Class {
			case provider.Install:
				p.DoneInstall()
			case provider.Uninstall:
				p.DoneUninstall()
			}
		}
	}

	return saveManifest, nil
}

func classify(specified, installSet, uninstallSet *manifest.Manifest) map[manifest.ProviderKind][]provider.Target {
	out := map[manifest.ProviderKind][]provider.Target{}
	for kind, pm := range specified.Providers {
		for tool, spec := range pm {
			class := provider.AlreadyInstalled
			if _, needsInstall := installSet.Providers[kind][tool]; needsInstall {
				class = provider.Install
			}
			out[kind] = append(out[kind], provider.Target{Name: tool, Detail: spec.Detail, Class: class})
		}
	}
	for kind, pm := range uninstallSet.Providers {
		for tool, spec := range pm {
			out[kind] = append(out[kind], provider.Target{Name: tool, Detail: spec.Detail, Class: provider.Uninstall})
		}
	}
	return out
}

func binsForTool(bm *cache.BinMap, kind manifest.ProviderKind, tool string) []string {
	var out []string
	for basename, entry := range bm.BinDependencies {
		if entry.ProviderKind == kind && entry.Name == tool {
			out = append(out, basename)
		}
	}
	return out
}

// execute runs every provider's targets according to its declared
// concurrency mode, collecting per-target errors into a single
// MultiInstallError rather than aborting sibling targets.
func (o *Orchestrator) execute(ctx context.Context, stagingHomeRoot, stagingBin string, byProvider map[manifest.ProviderKind][]provider.Target, priorBinMap *cache.BinMap) error {
	var mu sync.Mutex
	var errs []*provider.InstallError

	recordErr := func(e *provider.InstallError) {
		mu.Lock()
		errs = append(errs, e)
		mu.Unlock()
	}

	for kind, targets := range byProvider {
		p, ok := o.Providers[kind]
		if !ok {
			recordErr(&provider.InstallError{ProviderKind: kind, Name: "*", ErrorMessage: "no provider registered for this kind"})
			continue
		}
		stagingHomeDir := filepath.Join(stagingHomeRoot, "home", string(kind))

		run := func(t provider.Target) error {
			return o.runOne(ctx, p, stagingHomeDir, stagingBin, t, priorBinMap, recordErr)
		}

		if p.Concurrency() == provider.Sequential {
			for _, t := range targets {
				_ = run(t)
			}
			continue
		}

		g, _ := errgroup.WithContext(ctx)
		for _, t := range targets {
			t := t
			g.Go(func() error {
				_ = run(t)
				return nil
			})
		}
		_ = g.Wait()
	}

	if len(errs) > 0 {
		return &provider.MultiInstallError{Errs: errs}
	}
	return nil
}

func (o *Orchestrator) runOne(ctx context.Context, p provider.Provider, stagingHomeDir, stagingBin string, t provider.Target, priorBinMap *cache.BinMap, recordErr func(*provider.InstallError)) error {
	prog := o.Reporter.MakeProgress(t.Name)
	switch t.Class {
	case provider.AlreadyInstalled:
		prog.AlreadyInstalled()
		return nil

	case provider.Install:
		prog.PrepareInstall()
		prog.StartInstall()
		if err := p.Install(ctx, stagingHomeDir, t); err != nil {
			prog.FailedInstall(err)
			var ierr *provider.InstallError
			if errors.As(err, &ierr) {
				recordErr(ierr)
			} else {
				recordErr(&provider.InstallError{ProviderKind: p.Kind(), Name: t.Name, ErrorMessage: err.Error(), Cause: err})
			}
			return err
		}
		prog.ReadyInstall()
		// Best-effort: a failed snapshot write doesn't fail the install,
		// it just means the next run falls back to "changed" for this tool.
		_ = pathdiff.Save(pathdiff.CachePath(filepath.Join(stagingHomeDir, t.Name)), snapshotFor(t))
		return nil

	case provider.Uninstall:
		prog.StartUninstall()
		bins := binsForTool(priorBinMap, p.Kind(), t.Name)
		if err := p.UnlinkBins(stagingBin, bins); err != nil {
			prog.FailedUninstall(err)
			recordErr(&provider.InstallError{ProviderKind: p.Kind(), Name: t.Name, ErrorMessage: err.Error(), Cause: err})
			return err
		}
		if err := p.Uninstall(ctx, stagingHomeDir, t); err != nil {
			prog.FailedUninstall(err)
			recordErr(&provider.InstallError{ProviderKind: p.Kind(), Name: t.Name, ErrorMessage: err.Error(), Cause: err})
			return err
		}
		prog.ReadyUninstall()
		return nil
	}
	return nil
}

func snapshotFor(t provider.Target) *pathdiff.Cache {
	if t.Detail.AbsolutePath == "" {
		return &pathdiff.Cache{Files: map[string]pathdiff.Entry{}}
	}
	files, err := pathdiff.Snapshot(t.Detail.AbsolutePath)
	if err != nil {
		return &pathdiff.Cache{Files: map[string]pathdiff.Entry{}}
	}
	return &pathdiff.Cache{Files: files}
}

// reconcileBinMap implements the bin-map reconstruction and uniqueness
// check: prune entries whose files vanished, detect duplicate basenames
// across every Install-class target *before* any mutation, then insert and
// link.
func (o *Orchestrator) reconcileBinMap(stagingBase, stagingBin string, byProvider map[manifest.ProviderKind][]provider.Target) error {
	bm := cache.LenientLoadBinMap(cache.BinMapPath(stagingBase))
	bm.PruneMissing(stagingBin)

	var candidates []binCandidate
	seen := map[string][]binCandidate{}

	for kind, targets := range byProvider {
		p, ok := o.Providers[kind]
		if !ok {
			continue
		}
		for _, t := range targets {
			if t.Class != provider.Install {
				continue
			}
			stagingHomeDir := filepath.Join(stagingBase, "home", string(kind))
			bins, err := p.EnumerateBins(stagingHomeDir, t)
			if err != nil {
				return fmt.Errorf("enumerating bins for %s/%s: %w", kind, t.Name, err)
			}
			for _, b := range bins {
				c := binCandidate{kind: kind, tool: t.Name, basename: b}
				candidates = append(candidates, c)
				seen[b] = append(seen[b], c)
			}
		}
	}

	var dupes []string
	for basename, cs := range seen {
		if len(cs) > 1 {
			dupes = append(dupes, basename)
		}
	}
	if len(dupes) > 0 {
		return &provider.DuplicateBinError{Names: dupes}
	}

	for _, c := range candidates {
		bm.Insert(c.basename, c.kind, c.tool, filepath.Join("bin", c.basename))
	}
	if err := cache.Save(cache.BinMapPath(stagingBase), bm); err != nil {
		return err
	}

	for kind, targets := range byProvider {
		p, ok := o.Providers[kind]
		if !ok {
			continue
		}
		stagingHomeDir := filepath.Join(stagingBase, "home", string(kind))
		for _, t := range targets {
			if t.Class != provider.Install {
				continue
			}
			bins := binsForCandidate(candidates, kind, t.Name)
			if err := p.LinkBins(stagingHomeDir, stagingBin, t, bins); err != nil {
				return fmt.Errorf("linking bins for %s/%s: %w", kind, t.Name, err)
			}
		}
	}
	return nil
}

type binCandidate struct {
	kind     manifest.ProviderKind
	tool     string
	basename string
}

func binsForCandidate(candidates []binCandidate, kind manifest.ProviderKind, tool string) []string {
	var out []string
	for _, c := range candidates {
		if c.kind == kind && c.tool == tool {
			out = append(out, c.basename)
		}
	}
	return out
}
