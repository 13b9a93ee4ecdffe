package workspace

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const workspaceMapFileName = "workspace_map.json"

// idAlphabet is the URL-safe alphabet ids are drawn from; each id is
// idLength (21) characters long. Collisions across projects are astronomically unlikely and no collision recovery is
// implemented, per the registry's documented failure mode.
const idAlphabet = "useandom26T198340PX75pxJACKVERYMINDBUSHWOLF"
const idLength = 21

// registryMap is the on-disk shape of workspace_map.json: canonical
// manifest directory → workspace id.
type registryMap map[string]string

// Registry resolves manifest directories to stable workspace ids, backed by
// a single process-global JSON file under the user's config directory.
type Registry struct {
	mapPath string
}

// NewRegistry opens the registry backed by the default per-user config
// location.
func NewRegistry() (*Registry, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return &Registry{mapPath: filepath.Join(dir, workspaceMapFileName)}, nil
}

func (r *Registry) load() registryMap {
	data, err := os.ReadFile(r.mapPath) // #nosec G304 - path is the fixed per-user config location
	if err != nil {
		return registryMap{}
	}
	var m registryMap
	if err := json.Unmarshal(data, &m); err != nil {
		return registryMap{}
	}
	return m
}

func (r *Registry) save(m registryMap) error {
	if err := os.MkdirAll(filepath.Dir(r.mapPath), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workspace map: %w", err)
	}
	if err := os.WriteFile(r.mapPath, data, 0o644); err != nil {
		return fmt.Errorf("writing workspace map %q: %w", r.mapPath, err)
	}
	return nil
}

// Resolve canonicalizes manifestDir and returns its Workspace, generating
// and persisting a fresh random id if one isn't already mapped.
func (r *Registry) Resolve(manifestDir string) (*Workspace, error) {
	canon, err := filepath.Abs(manifestDir)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing manifest dir %q: %w", manifestDir, err)
	}

	m := r.load()
	id, ok := m[canon]
	if !ok {
		id, err = newID()
		if err != nil {
			return nil, err
		}
		m[canon] = id
		if err := r.save(m); err != nil {
			return nil, err
		}
	}
	return newWorkspace(id)
}

// Forget removes manifestDir's mapping from the registry, used by `clean`.
// The id is not reused: the next Resolve for this directory generates a
// fresh one.
func (r *Registry) Forget(manifestDir string) error {
	canon, err := filepath.Abs(manifestDir)
	if err != nil {
		return fmt.Errorf("canonicalizing manifest dir %q: %w", manifestDir, err)
	}
	m := r.load()
	if _, ok := m[canon]; !ok {
		return nil
	}
	delete(m, canon)
	return r.save(m)
}

func newID() (string, error) {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating workspace id: %w", err)
	}
	out := make([]byte, idLength)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out), nil
}
