// Package provider defines the abstract contract every installer back-end
// implements: install one tool, uninstall one, enumerate the executables it
// produced, and link/unlink them into a workspace's shared bin/ directory.
package provider

import (
	"context"

	"github.com/isobin/isobin/internal/manifest"
)

// Concurrency describes how an orchestrator may schedule a provider's
// targets relative to each other.
type Concurrency int

const (
	Parallel Concurrency = iota
	Sequential
)

// Class is the transient, in-memory classification the orchestrator
// assigns to a target before executing it.
type Class int

const (
	Install Class = iota
	AlreadyInstalled
	Uninstall
)

func (c Class) String() string {
	switch c {
	case Install:
		return "install"
	case AlreadyInstalled:
		return "already-installed"
	case Uninstall:
		return "uninstall"
	default:
		return "unknown"
	}
}

// Target is one tool, bound to the dependency detail declared for it and
// its classification for the current run.
type Target struct {
	Name   string
	Detail manifest.DependencyDetail
	Class  Class
}

// Provider is the capability set an installer back-end implements. A
// provider's operations run against a staging workspace directory supplied
// by the orchestrator; nothing in a provider mutates shared state outside
// the filesystem paths it's handed.
type Provider interface {
	Kind() manifest.ProviderKind
	Concurrency() Concurrency

	// Install materializes target under stagingHomeDir (the provider's
	// home root inside the staging workspace, e.g. staging/base/home/cargo;
	// each tool gets its own subdirectory there).
	Install(ctx context.Context, stagingHomeDir string, target Target) error

	// Uninstall removes target's install directory under stagingHomeDir.
	Uninstall(ctx context.Context, stagingHomeDir string, target Target) error

	// EnumerateBins lists the executable files target produced under
	// stagingHomeDir.
	EnumerateBins(stagingHomeDir string, target Target) ([]string, error)

	// LinkBins hardlinks each of target's produced executables into
	// stagingBinDir, overwriting any existing link at that name.
	LinkBins(stagingHomeDir, stagingBinDir string, target Target, bins []string) error

	// UnlinkBins removes target's links from stagingBinDir.
	UnlinkBins(stagingBinDir string, bins []string) error

	// Summary is a one-line human description of target, for progress
	// reporting.
	Summary(target Target) string
}

// InstallError describes a single provider operation failure.
type InstallError struct {
	ProviderKind manifest.ProviderKind
	Name         string
	ErrorMessage string
	Cause        error
}

func (e *InstallError) Error() string {
	return e.ProviderKind.String() + "/" + e.Name + ": " + e.ErrorMessage
}

func (e *InstallError) Unwrap() error { return e.Cause }

// MultiInstallError aggregates every InstallError from one execution phase.
type MultiInstallError struct {
	Errs []*InstallError
}

func (e *MultiInstallError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	msg := ""
	for i, err := range e.Errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}

func (e *MultiInstallError) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		errs[i] = err
	}
	return errs
}

// DuplicateBinError is returned when the same executable basename would be
// produced by more than one provider/tool in a single install.
type DuplicateBinError struct {
	Names []string
}

func (e *DuplicateBinError) Error() string {
	msg := "duplicate executable name"
	if len(e.Names) != 1 {
		msg += "s"
	}
	msg += ": "
	for i, n := range e.Names {
		if i > 0 {
			msg += ", "
		}
		msg += n
	}
	return msg
}
