// Package cargo implements the isobin Provider contract by shelling out to
// the `cargo` binary: `cargo install --root <dir>` to materialize a tool,
// a directory removal to uninstall it, and an executable-bit scan of its
// install tree to discover the binaries it produced.
package cargo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/provider"
	"github.com/isobin/isobin/internal/util"
)

// Name is the provider's identifier, matching manifest.Cargo.
const Name = "cargo"

// Binary is the name of the cargo executable invoked; resolved from PATH.
// It exists as a var, not a const, so tests can point it at a fake.
var Binary = "cargo"

// Provider shells out to `cargo install`/`cargo uninstall`-equivalent
// directory removal for every declared cargo tool.
type Provider struct{}

// New returns a ready-to-use cargo Provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Kind() manifest.ProviderKind { return manifest.Cargo }

func (p *Provider) Concurrency() provider.Concurrency { return provider.Parallel }

func (p *Provider) Summary(target provider.Target) string {
	d := target.Detail
	switch {
	case d.Path != "":
		return fmt.Sprintf("%s (path: %s)", target.Name, d.Path)
	case d.Git != "":
		return fmt.Sprintf("%s (git: %s)", target.Name, d.Git)
	case d.Version != "":
		return fmt.Sprintf("%s %s", target.Name, d.Version)
	default:
		return target.Name
	}
}

// toolDir is the cargo install root for one tool within a staging workspace
// home directory: <stagingHomeDir>/<tool>.
func toolDir(stagingHomeDir, tool string) string {
	return filepath.Join(stagingHomeDir, tool)
}

// Install runs `cargo install` with arguments derived from target.Detail in
// the fixed order the manifest's dependency fields are documented in:
// version, registry, index, path, git, branch, tag, rev, bins, features,
// all-features, no-default-features, then the tool name last.
func (p *Provider) Install(ctx context.Context, stagingHomeDir string, target provider.Target) error {
	root := toolDir(stagingHomeDir, target.Name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating cargo install root: %w", err)
	}

	args := buildInstallArgs(root, target)

	var stderr bytes.Buffer
	runOnce := func(ctx context.Context) error {
		stderr.Reset()
		cmd := exec.CommandContext(ctx, Binary, args...) //nolint:gosec // Binary defaults to "cargo" from PATH, never shell-interpolated
		cmd.Stdout = io.Discard
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}

	// A local path dependency can't fail on network transience, and retrying
	// a genuine build error just repeats it; only registry/git fetches are
	// worth a few attempts against a flaky network.
	opts := []util.RetryOption{util.WithMaxAttempts(1)}
	if target.Detail.AbsolutePath == "" {
		opts = []util.RetryOption{
			util.WithMaxAttempts(3),
			util.WithInitialDelay(500 * time.Millisecond),
			util.WithMaxDelay(5 * time.Second),
			util.WithRetryCondition(isTransientFetchError),
		}
	}

	if err := util.Retry(ctx, runOnce, opts...); err != nil {
		return &provider.InstallError{
			ProviderKind: manifest.Cargo,
			Name:         target.Name,
			ErrorMessage: strings.TrimSpace(stderr.String()),
			Cause:        err,
		}
	}
	return nil
}

// isTransientFetchError reports whether cargo's stderr output looks like a
// network blip rather than a build or configuration failure worth retrying.
func isTransientFetchError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"network", "timed out", "timeout", "connection reset", "could not resolve", "temporary failure"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func buildInstallArgs(root string, target provider.Target) []string {
	d := target.Detail
	args := []string{"--quiet", "install", "--force", "--root", root}

	if d.Version != "" {
		args = append(args, "--version", d.Version)
	}
	if d.Registry != "" {
		args = append(args, "--registry", d.Registry)
	}
	if d.Index != "" {
		args = append(args, "--index", d.Index)
	}
	if d.AbsolutePath != "" {
		args = append(args, "--path", d.AbsolutePath)
	}
	if d.Git != "" {
		args = append(args, "--git", d.Git)
	}
	if d.Branch != "" {
		args = append(args, "--branch", d.Branch)
	}
	if d.Tag != "" {
		args = append(args, "--tag", d.Tag)
	}
	if d.Rev != "" {
		args = append(args, "--rev", d.Rev)
	}
	for _, bin := range d.Bins {
		args = append(args, "--bin", bin)
	}
	if len(d.Features) > 0 {
		args = append(args, "--features", strings.Join(d.Features, ","))
	}
	if d.AllFeatures {
		args = append(args, "--all-features")
	}
	if d.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	args = append(args, target.Name)
	return args
}

// Uninstall recursively deletes the tool's install directory, if present.
func (p *Provider) Uninstall(_ context.Context, stagingHomeDir string, target provider.Target) error {
	if err := os.RemoveAll(toolDir(stagingHomeDir, target.Name)); err != nil {
		return fmt.Errorf("removing cargo install dir for %s: %w", target.Name, err)
	}
	return nil
}

// EnumerateBins lists the executable files in the tool's bin/ subdirectory.
func (p *Provider) EnumerateBins(stagingHomeDir string, target provider.Target) ([]string, error) {
	binDir := filepath.Join(toolDir(stagingHomeDir, target.Name), "bin")
	entries, err := os.ReadDir(binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s's bin dir: %w", target.Name, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", e.Name(), err)
		}
		if isExecutable(info) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func isExecutable(info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Ext(info.Name()), ".exe")
	}
	return info.Mode().Perm()&0o111 != 0
}

// LinkBins hardlinks each produced executable into stagingBinDir,
// overwriting any existing link at that name — the staging bin/ directory
// is solely owned by the current install, so a collision there is always
// this tool's own previous link.
func (p *Provider) LinkBins(stagingHomeDir, stagingBinDir string, target provider.Target, bins []string) error {
	if err := os.MkdirAll(stagingBinDir, 0o755); err != nil {
		return fmt.Errorf("creating staging bin dir: %w", err)
	}
	binSrcDir := filepath.Join(toolDir(stagingHomeDir, target.Name), "bin")
	for _, bin := range bins {
		src := filepath.Join(binSrcDir, bin)
		dst := filepath.Join(stagingBinDir, bin)
		_ = os.Remove(dst)
		if err := os.Link(src, dst); err != nil {
			return fmt.Errorf("linking %s: %w", bin, err)
		}
	}
	return nil
}

// UnlinkBins removes the named links from stagingBinDir.
func (p *Provider) UnlinkBins(stagingBinDir string, bins []string) error {
	for _, bin := range bins {
		if err := os.Remove(filepath.Join(stagingBinDir, bin)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlinking %s: %w", bin, err)
		}
	}
	return nil
}
