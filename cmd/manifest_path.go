package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var manifestCandidates = []string{"isobin.toml", "isobin.yaml", "isobin.yml", "isobin.json"}

// ErrNotFoundIsobinManifest is returned when no manifest was found searching
// upward from the working directory.
type ErrNotFoundIsobinManifest struct{}

func (e *ErrNotFoundIsobinManifest) Error() string {
	return "no isobin manifest found (looked for isobin.toml/yaml/yml/json from the working directory upward)"
}

// ErrManifestConflict is returned when a single directory contains more than
// one manifest candidate file.
type ErrManifestConflict struct {
	Dir     string
	Matches []string
}

func (e *ErrManifestConflict) Error() string {
	return fmt.Sprintf("multiple isobin manifests found in %s: %s", e.Dir, strings.Join(e.Matches, ", "))
}

// resolveManifestPath returns the manifest path for the current invocation:
// the --manifest-path flag if set, otherwise an upward search from the
// working directory for isobin.{toml,yaml,yml,json}.
func resolveManifestPath() (string, error) {
	if manifestPathFlag != "" {
		abs, err := filepath.Abs(manifestPathFlag)
		if err != nil {
			return "", fmt.Errorf("resolving --manifest-path: %w", err)
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	for {
		var matches []string
		for _, name := range manifestCandidates {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				matches = append(matches, name)
			}
		}
		switch len(matches) {
		case 0:
			// keep searching upward
		case 1:
			return filepath.Join(dir, matches[0]), nil
		default:
			return "", &ErrManifestConflict{Dir: dir, Matches: matches}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &ErrNotFoundIsobinManifest{}
		}
		dir = parent
	}
}
