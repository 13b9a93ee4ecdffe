package workspace

import (
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	return &Registry{mapPath: filepath.Join(dir, workspaceMapFileName)}
}

func TestResolveIsStableAcrossCalls(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	w1, err := r.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	w2, err := r.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w1.ID != w2.ID {
		t.Errorf("ids differ across calls: %q vs %q", w1.ID, w2.ID)
	}
}

func TestForgetThenResolveGetsFreshID(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	w1, err := r.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := r.Forget(dir); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	w2, err := r.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w1.ID == w2.ID {
		t.Error("expected a fresh id after Forget, got the same one")
	}
}

func TestResolveMissingMapFileIsEmpty(t *testing.T) {
	r := newTestRegistry(t)
	m := r.load()
	if len(m) != 0 {
		t.Errorf("expected empty map for missing file, got %d entries", len(m))
	}
}
