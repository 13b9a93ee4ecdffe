// Package cache is pure I/O over the two persisted files that make up a
// workspace's cache: the bin-map and the manifest cache. Both are lenient
// on load (a missing or truncated file is treated as empty, never a fatal
// error) and written as a single create/truncate/write-all, same as the
// rest of the pack's config persistence.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isobin/isobin/internal/manifest"
)

const binMapFileName = "bin_map.v1.json"

// BinEntry is one reverse-index record: which provider/tool produced a
// given executable file name.
type BinEntry struct {
	ProviderKind manifest.ProviderKind `json:"provider"`
	Name         string                `json:"name"`
	BinFileName  string                `json:"bin_file_name"`
}

// BinMap maps an executable file's base name to the tool that produced it.
type BinMap struct {
	BinDependencies map[string]BinEntry `json:"bin_dependencies"`
}

// NewBinMap returns an empty bin-map.
func NewBinMap() *BinMap {
	return &BinMap{BinDependencies: map[string]BinEntry{}}
}

// BinMapPath returns the bin-map file location under a workspace's base dir.
func BinMapPath(baseDir string) string {
	return filepath.Join(baseDir, binMapFileName)
}

// LenientLoadBinMap reads the bin-map at path, returning an empty map if the
// file is missing or fails to parse.
func LenientLoadBinMap(path string) *BinMap {
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the workspace layout
	if err != nil {
		return NewBinMap()
	}
	var bm BinMap
	if err := json.Unmarshal(data, &bm); err != nil || bm.BinDependencies == nil {
		return NewBinMap()
	}
	return &bm
}

// Insert records that basename was produced by (kind, tool), installed at
// binFileName, a path relative to the workspace base directory (e.g.
// bin/rg).
func (bm *BinMap) Insert(basename string, kind manifest.ProviderKind, tool, binFileName string) {
	bm.BinDependencies[basename] = BinEntry{ProviderKind: kind, Name: tool, BinFileName: binFileName}
}

// Remove deletes basename's entry, if any.
func (bm *BinMap) Remove(basename string) {
	delete(bm.BinDependencies, basename)
}

// PruneMissing drops any entry whose linked file no longer exists under
// binDir, so the map never claims an executable that isn't there.
func (bm *BinMap) PruneMissing(binDir string) {
	for basename := range bm.BinDependencies {
		if _, err := os.Stat(filepath.Join(binDir, basename)); err != nil {
			delete(bm.BinDependencies, basename)
		}
	}
}

// Save writes the bin-map to path.
func Save(path string, bm *BinMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating bin-map dir: %w", err)
	}
	data, err := json.MarshalIndent(bm, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bin-map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bin-map %q: %w", path, err)
	}
	return nil
}
