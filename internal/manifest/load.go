package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "github.com/goccy/go-yaml"
)

// fileFormat is the serialization inferred from a manifest path's extension.
type fileFormat int

const (
	formatTOML fileFormat = iota
	formatYAML
	formatJSON
)

func formatForExt(path string) (fileFormat, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, &ErrNothingFileExtension{Path: path}
	}
	switch strings.ToLower(ext) {
	case "toml":
		return formatTOML, nil
	case "yaml", "yml":
		return formatYAML, nil
	case "json":
		return formatJSON, nil
	default:
		return 0, &ErrUnknownFileExtension{Path: path, Ext: ext}
	}
}

// rawManifest is the on-disk shape: one key per provider name.
type rawManifest map[string]ProviderManifest

// Load reads and deserializes the manifest at path, then fixes relative
// `path` dependency roots against the manifest's containing directory.
// It does not validate; call Validate separately once Load succeeds.
func Load(path string) (*Manifest, error) {
	format, err := formatForExt(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is the user-specified manifest location
	if err != nil {
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	var raw rawManifest
	switch format {
	case formatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, &ErrDeserialize{Path: path, Err: err}
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ErrDeserialize{Path: path, Err: err, Hint: "check indentation and key names"}
		}
	case formatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ErrDeserialize{Path: path, Err: err}
		}
	}

	m := NewManifest()
	for name, pm := range raw {
		kind := ProviderKind(name)
		cp := make(ProviderManifest, len(pm))
		for tool, spec := range pm {
			cp[tool] = spec
		}
		m.Providers[kind] = cp
	}

	if err := m.Fix(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return m, nil
}

// Fix resolves every relative `path` dependency field against manifestDir,
// storing the result in AbsolutePath. It mutates m in place and is meant to
// run exactly once, immediately after Load.
func (m *Manifest) Fix(manifestDir string) error {
	for kind, pm := range m.Providers {
		for tool, spec := range pm {
			if spec.Detail.Path == "" {
				continue
			}
			abs := spec.Detail.Path
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(manifestDir, abs)
			}
			abs, err := filepath.Abs(abs)
			if err != nil {
				return fmt.Errorf("resolving path dependency %s/%s: %w", kind, tool, err)
			}
			spec.Detail.AbsolutePath = abs
			pm[tool] = spec
		}
	}
	return nil
}

// Validate checks every dependency individually and aggregates failures.
// A Detailed entry needs at least one of {version, path, git}; unknown
// provider kinds are rejected outright.
func (m *Manifest) Validate() error {
	var errs []*ErrValidate
	for kind, pm := range m.Providers {
		if !kind.Valid() {
			errs = append(errs, &ErrValidate{Provider: kind, Name: "*", Cause: "unknown provider"})
			continue
		}
		for tool, spec := range pm {
			d := spec.Detail
			if d.Version == "" && d.Path == "" && d.Git == "" {
				errs = append(errs, &ErrValidate{
					Provider: kind, Name: tool,
					Cause: "must specify at least one of version, path, or git",
				})
				continue
			}
			if d.Version != "" {
				if _, err := d.ParsedVersion(); err != nil {
					errs = append(errs, &ErrValidate{Provider: kind, Name: tool, Cause: fmt.Sprintf("invalid version: %v", err)})
				}
			}
		}
	}
	if len(errs) > 0 {
		return &ErrMultiValidate{Errs: errs}
	}
	return nil
}
