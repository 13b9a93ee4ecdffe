package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// DependencyDetail is the fully-expanded form of a dependency specification.
// A Simple(version) entry in the manifest file is normalized to
// Detailed{Version: version} the moment it is loaded (see DependencySpec).
type DependencyDetail struct {
	Bins              []string `json:"bins,omitempty" yaml:"bins,omitempty" toml:"bins,omitempty"`
	Version           string   `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Registry          string   `json:"registry,omitempty" yaml:"registry,omitempty" toml:"registry,omitempty"`
	Index             string   `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`
	Path              string   `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	AbsolutePath      string   `json:"-" yaml:"-" toml:"-"`
	Git               string   `json:"git,omitempty" yaml:"git,omitempty" toml:"git,omitempty"`
	Branch            string   `json:"branch,omitempty" yaml:"branch,omitempty" toml:"branch,omitempty"`
	Tag               string   `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
	Rev               string   `json:"rev,omitempty" yaml:"rev,omitempty" toml:"rev,omitempty"`
	Features          []string `json:"features,omitempty" yaml:"features,omitempty" toml:"features,omitempty"`
	NoDefaultFeatures bool     `json:"no_default_features,omitempty" yaml:"no_default_features,omitempty" toml:"no_default_features,omitempty"`
	AllFeatures       bool     `json:"all_features,omitempty" yaml:"all_features,omitempty" toml:"all_features,omitempty"`
}

// ParsedVersion parses Version as semver, returning nil if Version is empty.
// A malformed version string is a validation error, caught by Validate, not
// here.
func (d *DependencyDetail) ParsedVersion() (*semver.Version, error) {
	if d.Version == "" {
		return nil, nil
	}
	return semver.NewVersion(d.Version)
}

// Equal reports structural equality of two dependency details. Any
// difference — including features, version, or registry — must trigger a
// reinstall, so this compares every field.
func (d DependencyDetail) Equal(o DependencyDetail) bool {
	if d.Version != o.Version || d.Registry != o.Registry || d.Index != o.Index ||
		d.Path != o.Path || d.Git != o.Git || d.Branch != o.Branch ||
		d.Tag != o.Tag || d.Rev != o.Rev ||
		d.NoDefaultFeatures != o.NoDefaultFeatures || d.AllFeatures != o.AllFeatures {
		return false
	}
	return stringSliceEqual(d.Bins, o.Bins) && stringSliceEqual(d.Features, o.Features)
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DependencySpec is the tagged union accepted in a manifest file: either a
// bare version string (Simple) or an object (Detailed). It always normalizes
// to Detailed on deserialization, so downstream code only ever deals with
// DependencyDetail.
type DependencySpec struct {
	Detail DependencyDetail
}

// rawDetail mirrors DependencyDetail for unmarshaling, accepting the
// documented field aliases (no-default-features/noDefaultFeatures etc.).
type rawDetail struct {
	Bins                  []string `json:"bins" yaml:"bins" toml:"bins"`
	Version               string   `json:"version" yaml:"version" toml:"version"`
	Registry              string   `json:"registry" yaml:"registry" toml:"registry"`
	Index                 string   `json:"index" yaml:"index" toml:"index"`
	RegistryIndex         string   `json:"registry-index" yaml:"registry-index" toml:"registry-index"`
	RegistryIndexCamel    string   `json:"registryIndex" yaml:"registryIndex" toml:"registryIndex"`
	Path                  string   `json:"path" yaml:"path" toml:"path"`
	Git                   string   `json:"git" yaml:"git" toml:"git"`
	Branch                string   `json:"branch" yaml:"branch" toml:"branch"`
	Tag                   string   `json:"tag" yaml:"tag" toml:"tag"`
	Rev                   string   `json:"rev" yaml:"rev" toml:"rev"`
	Features              []string `json:"features" yaml:"features" toml:"features"`
	NoDefaultFeatures     bool     `json:"no_default_features" yaml:"no_default_features" toml:"no_default_features"`
	NoDefaultFeaturesKeb  bool     `json:"no-default-features" yaml:"no-default-features" toml:"no-default-features"`
	NoDefaultFeaturesCml  bool     `json:"noDefaultFeatures" yaml:"noDefaultFeatures" toml:"noDefaultFeatures"`
	DefaultFeatures       *bool    `json:"default_features" yaml:"default_features" toml:"default_features"`
	DefaultFeaturesKeb    *bool    `json:"default-features" yaml:"default-features" toml:"default-features"`
	DefaultFeaturesCml    *bool    `json:"defaultFeatures" yaml:"defaultFeatures" toml:"defaultFeatures"`
	AllFeatures           bool     `json:"all_features" yaml:"all_features" toml:"all_features"`
	AllFeaturesKeb        bool     `json:"all-features" yaml:"all-features" toml:"all-features"`
	AllFeaturesCml        bool     `json:"allFeatures" yaml:"allFeatures" toml:"allFeatures"`
}

func (r rawDetail) toDetail() DependencyDetail {
	noDefault := r.NoDefaultFeatures || r.NoDefaultFeaturesKeb || r.NoDefaultFeaturesCml
	if df := firstNonNil(r.DefaultFeatures, r.DefaultFeaturesKeb, r.DefaultFeaturesCml); df != nil && !*df {
		noDefault = true
	}
	registry := r.Registry
	index := firstNonEmpty(r.Index, r.RegistryIndex, r.RegistryIndexCamel)
	return DependencyDetail{
		Bins:              r.Bins,
		Version:           r.Version,
		Registry:          registry,
		Index:             index,
		Path:              r.Path,
		Git:               r.Git,
		Branch:            r.Branch,
		Tag:               r.Tag,
		Rev:               r.Rev,
		Features:          r.Features,
		NoDefaultFeatures: noDefault,
		AllFeatures:       r.AllFeatures || r.AllFeaturesKeb || r.AllFeaturesCml,
	}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(vs ...*bool) *bool {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// UnmarshalJSON accepts either a bare version string or a detail object.
func (s *DependencySpec) UnmarshalJSON(b []byte) error {
	var simple string
	if err := json.Unmarshal(b, &simple); err == nil {
		s.Detail = DependencyDetail{Version: simple}
		return nil
	}
	var raw rawDetail
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding dependency spec: %w", err)
	}
	s.Detail = raw.toDetail()
	return nil
}

// MarshalJSON always emits the detailed object form.
func (s DependencySpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Detail)
}

// UnmarshalYAML accepts either a bare version string or a detail mapping.
// goccy/go-yaml calls this with the raw document bytes for the node.
func (s *DependencySpec) UnmarshalYAML(b []byte) error {
	var simple string
	if err := yamlUnmarshalScalar(b, &simple); err == nil && simple != "" {
		s.Detail = DependencyDetail{Version: simple}
		return nil
	}
	var raw rawDetail
	if err := yamlUnmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding dependency spec: %w", err)
	}
	s.Detail = raw.toDetail()
	return nil
}

// UnmarshalTOML implements github.com/BurntSushi/toml's Unmarshaler
// interface. BurntSushi/toml hands us the already-parsed generic value
// (string for Simple, map[string]interface{} for Detailed).
func (s *DependencySpec) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		s.Detail = DependencyDetail{Version: v}
		return nil
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("re-encoding toml dependency table: %w", err)
		}
		var raw rawDetail
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("decoding toml dependency table: %w", err)
		}
		s.Detail = raw.toDetail()
		return nil
	default:
		return fmt.Errorf("unsupported dependency spec shape %T", data)
	}
}

// ProviderManifest maps tool name to dependency spec within one provider.
type ProviderManifest map[string]DependencySpec

// Manifest is the full declared tool set, one sub-manifest per provider.
type Manifest struct {
	Providers map[ProviderKind]ProviderManifest
}

// NewManifest returns an empty manifest ready for merging into.
func NewManifest() *Manifest {
	return &Manifest{Providers: map[ProviderKind]ProviderManifest{}}
}

// IsEmpty reports whether the manifest declares no tools under any provider.
func (m *Manifest) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, pm := range m.Providers {
		if len(pm) > 0 {
			return false
		}
	}
	return true
}

// Clone copies the manifest's provider and tool maps so callers can add,
// replace, or delete entries in the result of a merge/filter/remove without
// touching the input. The Bins and Features slices inside each entry are
// shared with the input, not copied.
func (m *Manifest) Clone() *Manifest {
	out := NewManifest()
	if m == nil {
		return out
	}
	for kind, pm := range m.Providers {
		cp := make(ProviderManifest, len(pm))
		for name, spec := range pm {
			cp[name] = spec
		}
		out.Providers[kind] = cp
	}
	return out
}
