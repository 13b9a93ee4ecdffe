package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isobin/isobin/internal/manifest"
)

const manifestCacheFileName = "isobin_cache.v1.json"

// ManifestCachePath returns the manifest-cache file location under a
// workspace's base dir.
func ManifestCachePath(baseDir string) string {
	return filepath.Join(baseDir, manifestCacheFileName)
}

// LenientLoadManifestCache reads the last-committed manifest at path,
// returning an empty manifest if the file is missing, unparsable, or the
// caller passed force=true (which discards history for this install).
func LenientLoadManifestCache(path string, force bool) *manifest.Manifest {
	if force {
		return manifest.NewManifest()
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the workspace layout
	if err != nil {
		return manifest.NewManifest()
	}
	var raw map[manifest.ProviderKind]manifest.ProviderManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return manifest.NewManifest()
	}
	m := manifest.NewManifest()
	for kind, pm := range raw {
		m.Providers[kind] = pm
	}
	return m
}

// SaveManifestCache writes m as the new last-committed manifest at path.
func SaveManifestCache(path string, m *manifest.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest cache dir: %w", err)
	}
	data, err := json.MarshalIndent(m.Providers, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest cache %q: %w", path, err)
	}
	return nil
}
