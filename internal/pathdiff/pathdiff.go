// Package pathdiff determines whether a path-backed dependency's source
// tree has changed since the last successful install, by comparing a cheap
// (size, mtime) snapshot rather than hashing file contents.
package pathdiff

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const cacheFileName = "file_modifid_cache.v1.json"

// watchedGlobs mirrors the source tree that a cargo path dependency actually
// participates in the build with. Glob patterns (rather than a flat
// extension/name set) let a caller widen the watch list per provider without
// changing this package.
var watchedGlobs = []string{"*.rs", "Cargo.toml", "Cargo.lock"}
var skipDirGlobs = []string{".git", "target"}

func matchesAny(globs []string, name string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
	}
	return false
}

// Entry is a single file's recorded size and modification time.
type Entry struct {
	Size         int64 `json:"size"`
	ModifiedAtNS int64 `json:"modifieded_at"`
}

// Cache is the persisted snapshot for one path-backed tool, keyed by file
// path relative to the dependency's root.
type Cache struct {
	Files map[string]Entry `json:"files"`
}

// CachePath returns the file-modified cache location for a tool's staging
// subtree, e.g. staging/base/home/cargo/<tool>/file_modifid_cache.v1.json.
func CachePath(toolHomeDir string) string {
	return filepath.Join(toolHomeDir, cacheFileName)
}

// LenientLoad reads the cache at path, returning an empty Cache (not an
// error) if the file is missing or unparsable. Corrupted cache state must
// never block an install.
func LenientLoad(path string) *Cache {
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the workspace layout
	if err != nil {
		return &Cache{Files: map[string]Entry{}}
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil || c.Files == nil {
		return &Cache{Files: map[string]Entry{}}
	}
	return &c
}

// Save writes the cache to path, creating parent directories as needed.
func Save(path string, c *Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating file-modified cache dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding file-modified cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file-modified cache %q: %w", path, err)
	}
	return nil
}

// Snapshot walks root and captures (size, mtime) for every watched file,
// skipping .git and target directories. The walk is iterative (an explicit
// stack), not recursive, per the detector's depth-bound design.
func Snapshot(root string) (map[string]Entry, error) {
	out := map[string]Entry{}
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading dir %q: %w", dir, err)
		}
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if matchesAny(skipDirGlobs, e.Name()) {
					continue
				}
				stack = append(stack, full)
				continue
			}
			if !matchesAny(watchedGlobs, e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", full, err)
			}
			rel, err := filepath.Rel(root, full)
			if err != nil {
				return nil, fmt.Errorf("relativizing %q: %w", full, err)
			}
			out[rel] = Entry{Size: info.Size(), ModifiedAtNS: info.ModTime().UnixNano()}
		}
	}
	return out, nil
}

// Changed reports whether root's current (size, mtime) snapshot differs
// from the snapshot recorded at cachePath. Unlike the snapshot's cache
// file's original counterpart in the tool this was adapted from, a missing
// or extra file is also treated as a change, not just a mismatch on a file
// that was already tracked — this avoids false-negative reinstalls when a
// source file is added or deleted without touching any existing one.
//
// Absence of the cache file itself means "changed" unconditionally: there
// is nothing to compare against.
func Changed(root, cachePath string) (bool, map[string]Entry, error) {
	current, err := Snapshot(root)
	if err != nil {
		return false, nil, err
	}

	info, err := os.Stat(cachePath)
	if err != nil || info == nil {
		return true, current, nil
	}
	cache := LenientLoad(cachePath)
	if len(cache.Files) != len(current) {
		return true, current, nil
	}
	for path, entry := range current {
		prev, ok := cache.Files[path]
		if !ok || prev != entry {
			return true, current, nil
		}
	}
	return false, current, nil
}
