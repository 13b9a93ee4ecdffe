// Package workspace resolves a project's manifest directory to a stable,
// per-project workspace on disk, and provides the staging/commit mechanics
// the install orchestrator uses to make every install crash-safe.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/isobin/isobin/internal/buildinfo"
)

const orgName = "isobin"

func namespace() string {
	if buildinfo.DevBuild {
		return "isobin_dev"
	}
	return "isobin"
}

// ConfigDir returns the per-user config root, honoring XDG_CONFIG_HOME on
// Unix and the platform default elsewhere, namespaced under isobin (or
// isobin_dev for debug builds, so a developer's real state is never
// touched by a development checkout).
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(base, namespace()), nil
}

// DataDir returns the per-user data root (XDG_DATA_HOME on Unix, the
// platform default elsewhere), namespaced the same way as ConfigDir.
func DataDir() (string, error) {
	base, err := userDataDir()
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	return filepath.Join(base, namespace()), nil
}

// userDataDir mirrors os.UserConfigDir's platform logic but for the data
// directory, since the standard library has no equivalent.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			return "", fmt.Errorf("%%LOCALAPPDATA%% is not defined")
		}
		return dir, nil
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}
