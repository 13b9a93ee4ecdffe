package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/isobin/isobin/internal/manifest"
)

func TestLenientLoadBinMapMissingFile(t *testing.T) {
	bm := LenientLoadBinMap(filepath.Join(t.TempDir(), "missing.json"))
	if len(bm.BinDependencies) != 0 {
		t.Errorf("expected empty bin-map, got %d entries", len(bm.BinDependencies))
	}
}

func TestBinMapRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := BinMapPath(dir)

	bm := NewBinMap()
	bm.Insert("rg", manifest.Cargo, "ripgrep", "base/bin/rg")
	if err := Save(path, bm); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := LenientLoadBinMap(path)
	entry, ok := loaded.BinDependencies["rg"]
	if !ok {
		t.Fatal("expected rg entry after round trip")
	}
	if entry.Name != "ripgrep" || entry.ProviderKind != manifest.Cargo {
		t.Errorf("entry = %+v, want ripgrep/cargo", entry)
	}
}

func TestBinMapPruneMissing(t *testing.T) {
	dir := t.TempDir()
	bm := NewBinMap()
	bm.Insert("rg", manifest.Cargo, "ripgrep", "rg")
	bm.Insert("bat", manifest.Cargo, "bat", "bat")
	// Only create "rg" in binDir.
	if err := os.WriteFile(filepath.Join(dir, "rg"), nil, 0o755); err != nil {
		t.Fatal(err)
	}

	bm.PruneMissing(dir)
	if _, ok := bm.BinDependencies["rg"]; !ok {
		t.Error("rg should survive pruning")
	}
	if _, ok := bm.BinDependencies["bat"]; ok {
		t.Error("bat should be pruned (no file on disk)")
	}
}

func TestLenientLoadManifestCacheForce(t *testing.T) {
	dir := t.TempDir()
	path := ManifestCachePath(dir)
	m := manifest.NewManifest()
	m.Providers[manifest.Cargo] = manifest.ProviderManifest{
		"ripgrep": {Detail: manifest.DependencyDetail{Version: "14.1.0"}},
	}
	if err := SaveManifestCache(path, m); err != nil {
		t.Fatalf("SaveManifestCache: %v", err)
	}

	forced := LenientLoadManifestCache(path, true)
	if !forced.IsEmpty() {
		t.Error("force=true should discard cache")
	}

	loaded := LenientLoadManifestCache(path, false)
	if loaded.IsEmpty() {
		t.Error("expected non-empty manifest cache")
	}
}
