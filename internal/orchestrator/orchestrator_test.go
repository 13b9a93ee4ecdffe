package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/progress"
	"github.com/isobin/isobin/internal/provider"
	"github.com/isobin/isobin/internal/workspace"
)

// fakeProvider installs by writing a single executable file named after the
// tool (or Bins[0] if set) into the staging home dir, so orchestrator tests
// never shell out to a real installer.
type fakeProvider struct {
	failOn      map[string]bool
	concurrency provider.Concurrency
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{failOn: map[string]bool{}, concurrency: provider.Parallel}
}

func (f *fakeProvider) Kind() manifest.ProviderKind      { return manifest.Cargo }
func (f *fakeProvider) Concurrency() provider.Concurrency { return f.concurrency }
func (f *fakeProvider) Summary(t provider.Target) string  { return t.Name }

func binName(t provider.Target) string {
	if len(t.Detail.Bins) > 0 {
		return t.Detail.Bins[0]
	}
	return t.Name
}

func (f *fakeProvider) Install(_ context.Context, stagingHomeDir string, t provider.Target) error {
	if f.failOn[t.Name] {
		return &provider.InstallError{ProviderKind: manifest.Cargo, Name: t.Name, ErrorMessage: "simulated failure"}
	}
	dir := filepath.Join(stagingHomeDir, t.Name, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, binName(t)), []byte(t.Detail.Version), 0o755)
}

func (f *fakeProvider) Uninstall(_ context.Context, stagingHomeDir string, t provider.Target) error {
	return os.RemoveAll(filepath.Join(stagingHomeDir, t.Name))
}

func (f *fakeProvider) EnumerateBins(stagingHomeDir string, t provider.Target) ([]string, error) {
	dir := filepath.Join(stagingHomeDir, t.Name, "bin")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out, nil
}

func (f *fakeProvider) LinkBins(stagingHomeDir, stagingBinDir string, t provider.Target, bins []string) error {
	if err := os.MkdirAll(stagingBinDir, 0o755); err != nil {
		return err
	}
	for _, b := range bins {
		src := filepath.Join(stagingHomeDir, t.Name, "bin", b)
		dst := filepath.Join(stagingBinDir, b)
		_ = os.Remove(dst)
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProvider) UnlinkBins(stagingBinDir string, bins []string) error {
	for _, b := range bins {
		if err := os.Remove(filepath.Join(stagingBinDir, b)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	return &workspace.Workspace{
		ID:       "test",
		BaseDir:  filepath.Join(root, "base"),
		CacheDir: filepath.Join(root, "cache"),
	}
}

func ripgrepManifest(version string) *manifest.Manifest {
	m := manifest.NewManifest()
	m.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"ripgrep": {Detail: manifest.DependencyDetail{Version: version}},
	}
	return m
}

func TestFreshInstallSingleTool(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	declared := ripgrepManifest("14.1.0")
	saved, err := o.Run(context.Background(), ws, declared, Options{Mode: All})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saved.Providers[manifest.Cargo]["ripgrep"].Detail.Version != "14.1.0" {
		t.Errorf("saved manifest missing ripgrep 14.1.0")
	}

	if _, err := os.Stat(filepath.Join(ws.BinDir(), "ripgrep")); err != nil {
		t.Errorf("expected bin/ripgrep to exist: %v", err)
	}
}

func TestNoOpReinstallIsIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	declared := ripgrepManifest("14.1.0")
	if _, err := o.Run(context.Background(), ws, declared, Options{Mode: All}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(ws.BinDir(), "ripgrep"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := o.Run(context.Background(), ws, declared, Options{Mode: All}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(ws.BinDir(), "ripgrep"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("re-install changed bin content: %q vs %q", before, after)
	}
}

func TestDuplicateBinAborts(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	declared := manifest.NewManifest()
	declared.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"tool-a": {Detail: manifest.DependencyDetail{Version: "1.0.0", Bins: []string{"foo"}}},
		"tool-b": {Detail: manifest.DependencyDetail{Version: "1.0.0", Bins: []string{"foo"}}},
	}

	_, err := o.Run(context.Background(), ws, declared, Options{Mode: All})
	if err == nil {
		t.Fatal("expected DuplicateBinError")
	}
	var dupErr *provider.DuplicateBinError
	if !errors.As(err, &dupErr) {
		t.Fatalf("err = %v, want *provider.DuplicateBinError", err)
	}
	if _, err := os.Stat(ws.BaseDir); !os.IsNotExist(err) {
		t.Error("expected base dir to remain absent after aborted first install")
	}
}

func TestPartialFailureLeavesBaseUnchanged(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	// Establish a committed state first.
	if _, err := o.Run(context.Background(), ws, ripgrepManifest("14.1.0"), Options{Mode: All}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(ws.BinDir(), "ripgrep"))
	if err != nil {
		t.Fatal(err)
	}

	declared := manifest.NewManifest()
	declared.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"ripgrep": {Detail: manifest.DependencyDetail{Version: "14.1.0"}},
		"bat":     {Detail: manifest.DependencyDetail{Version: "0.24.0"}},
	}
	fp.failOn["bat"] = true

	_, err = o.Run(context.Background(), ws, declared, Options{Mode: All})
	if err == nil {
		t.Fatal("expected an aggregated install error")
	}
	var multi *provider.MultiInstallError
	if !errors.As(err, &multi) {
		t.Fatalf("err = %v, want *provider.MultiInstallError", err)
	}

	after, err := os.ReadFile(filepath.Join(ws.BinDir(), "ripgrep"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("base dir changed despite a failed install")
	}
}

func TestSyncUninstallsRemovedTool(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	declared := manifest.NewManifest()
	declared.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"a": {Detail: manifest.DependencyDetail{Version: "1.0.0"}},
		"b": {Detail: manifest.DependencyDetail{Version: "1.0.0"}},
	}
	if _, err := o.Run(context.Background(), ws, declared, Options{Mode: All, AllowUninstall: true}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}

	onlyA := manifest.NewManifest()
	onlyA.Providers[manifest.Cargo] = manifest.ProviderManifest{"a": {Detail: manifest.DependencyDetail{Version: "1.0.0"}}}

	saved, err := o.Run(context.Background(), ws, onlyA, Options{Mode: All, AllowUninstall: true})
	if err != nil {
		t.Fatalf("sync Run: %v", err)
	}
	if _, ok := saved.Providers[manifest.Cargo]["b"]; ok {
		t.Error("expected b to be removed from the saved manifest")
	}
	if _, err := os.Stat(filepath.Join(ws.BinDir(), "b")); !os.IsNotExist(err) {
		t.Error("expected bin/b to be removed")
	}
	if _, err := os.Stat(filepath.Join(ws.BinDir(), "a")); err != nil {
		t.Errorf("expected bin/a to survive sync: %v", err)
	}
}

func TestInstallNeverUninstalls(t *testing.T) {
	ws := newTestWorkspace(t)
	fp := newFakeProvider()
	o := New(map[manifest.ProviderKind]provider.Provider{manifest.Cargo: fp}, progress.NoOpReporter{})

	declared := manifest.NewManifest()
	declared.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"a": {Detail: manifest.DependencyDetail{Version: "1.0.0"}},
		"b": {Detail: manifest.DependencyDetail{Version: "1.0.0"}},
	}
	if _, err := o.Run(context.Background(), ws, declared, Options{Mode: All, AllowUninstall: true}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}

	onlyA := manifest.NewManifest()
	onlyA.Providers[manifest.Cargo] = manifest.ProviderManifest{"a": {Detail: manifest.DependencyDetail{Version: "1.0.0"}}}

	// AllowUninstall: false, as `install` always passes.
	saved, err := o.Run(context.Background(), ws, onlyA, Options{Mode: Only, Targets: []manifest.TargetRef{{Name: "a"}}, AllowUninstall: false})
	if err != nil {
		t.Fatalf("install Run: %v", err)
	}
	if _, ok := saved.Providers[manifest.Cargo]["b"]; !ok {
		t.Error("expected b to remain in the cache: install must never uninstall")
	}
	if _, err := os.Stat(filepath.Join(ws.BinDir(), "b")); err != nil {
		t.Errorf("expected bin/b to remain: %v", err)
	}
}
