package manifest

// TargetRef names a tool to operate on, optionally qualified by provider.
// An unqualified TargetRef (Provider == "") matches by name across every
// provider in the manifest — mirroring how `isobin install foo` resolves
// `foo` without the caller knowing which provider owns it.
type TargetRef struct {
	Provider ProviderKind
	Name     string
}

// PathChanged reports whether the path-backed source tree for a dependency
// has changed since the last recorded snapshot. The manifest package only
// needs this one predicate from the path-change detector, so it takes it as
// a function value rather than importing internal/pathdiff directly.
type PathChanged func(kind ProviderKind, tool string, detail DependencyDetail) (bool, error)

// Filter retains only the tools named by targets. An unqualified target
// matches the tool name in any provider; a qualified one requires an exact
// provider match.
func (m *Manifest) Filter(targets []TargetRef) *Manifest {
	out := NewManifest()
	for kind, pm := range m.Providers {
		for tool, spec := range pm {
			for _, t := range targets {
				if t.Name != tool {
					continue
				}
				if t.Provider != "" && t.Provider != kind {
					continue
				}
				if out.Providers[kind] == nil {
					out.Providers[kind] = ProviderManifest{}
				}
				out.Providers[kind][tool] = spec
				break
			}
		}
	}
	return out
}

// Merge shallow-merges overlay into base, per tool, with overlay winning on
// conflict. Neither input is mutated.
func Merge(base, overlay *Manifest) *Manifest {
	out := base.Clone()
	for kind, pm := range overlay.Providers {
		if out.Providers[kind] == nil {
			out.Providers[kind] = ProviderManifest{}
		}
		for tool, spec := range pm {
			out.Providers[kind][tool] = spec
		}
	}
	return out
}

// Remove returns base with every tool present in toRemove deleted, per
// provider. Neither input is mutated.
func Remove(base, toRemove *Manifest) *Manifest {
	out := base.Clone()
	for kind, pm := range toRemove.Providers {
		dst := out.Providers[kind]
		if dst == nil {
			continue
		}
		for tool := range pm {
			delete(dst, tool)
		}
	}
	return out
}

// DiffNeedInstall returns the tools in base that are absent from old, that
// differ structurally from old, or whose path-backed source tree has
// changed since the last install (per pathChanged).
func DiffNeedInstall(base, old *Manifest, pathChanged PathChanged) (*Manifest, error) {
	out := NewManifest()
	for kind, pm := range base.Providers {
		for tool, spec := range pm {
			oldSpec, existed := lookup(old, kind, tool)
			needs := !existed || !spec.Detail.Equal(oldSpec.Detail)
			if !needs && spec.Detail.AbsolutePath != "" && pathChanged != nil {
				changed, err := pathChanged(kind, tool, spec.Detail)
				if err != nil {
					return nil, err
				}
				needs = changed
			}
			if needs {
				addEntry(out, kind, tool, spec)
			}
		}
	}
	return out, nil
}

// DiffNeedUninstall returns the tools present in old but absent from base.
func DiffNeedUninstall(base, old *Manifest) *Manifest {
	out := NewManifest()
	for kind, pm := range old.Providers {
		for tool, spec := range pm {
			if _, existed := lookup(base, kind, tool); !existed {
				addEntry(out, kind, tool, spec)
			}
		}
	}
	return out
}

// AlreadyInstalled returns the tools in base that are present in old,
// structurally unchanged, and (for path dependencies) whose source tree has
// not changed — the complement of DiffNeedInstall within base.
func AlreadyInstalled(base, old *Manifest, pathChanged PathChanged) (*Manifest, error) {
	needInstall, err := DiffNeedInstall(base, old, pathChanged)
	if err != nil {
		return nil, err
	}
	out := NewManifest()
	for kind, pm := range base.Providers {
		for tool, spec := range pm {
			if _, isInstall := lookup(needInstall, kind, tool); isInstall {
				continue
			}
			addEntry(out, kind, tool, spec)
		}
	}
	return out, nil
}

func lookup(m *Manifest, kind ProviderKind, tool string) (DependencySpec, bool) {
	if m == nil {
		return DependencySpec{}, false
	}
	pm, ok := m.Providers[kind]
	if !ok {
		return DependencySpec{}, false
	}
	spec, ok := pm[tool]
	return spec, ok
}

func addEntry(m *Manifest, kind ProviderKind, tool string, spec DependencySpec) {
	if m.Providers[kind] == nil {
		m.Providers[kind] = ProviderManifest{}
	}
	m.Providers[kind][tool] = spec
}
