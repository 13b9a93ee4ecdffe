package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/isobin/isobin/internal/manifest"
	"github.com/isobin/isobin/internal/provider"
)

func TestFormatErrorSingle(t *testing.T) {
	err := errors.New("boom")
	got := FormatError(err)
	if !strings.Contains(got, "boom") {
		t.Errorf("FormatError(%v) = %q, want it to contain %q", err, got, "boom")
	}
	if strings.Count(got, "\n") != 0 {
		t.Errorf("FormatError(%v) = %q, want a single line", err, got)
	}
}

func TestFormatErrorMultiInstall(t *testing.T) {
	err := &provider.MultiInstallError{
		Errs: []*provider.InstallError{
			{ProviderKind: manifest.Cargo, Name: "ripgrep", ErrorMessage: "exit status 1"},
			{ProviderKind: manifest.Cargo, Name: "fd-find", ErrorMessage: "network unreachable"},
		},
	}
	got := FormatError(err)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("FormatError produced %d lines, want 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "ripgrep") || !strings.Contains(lines[0], "exit status 1") {
		t.Errorf("line 0 = %q, missing expected substrings", lines[0])
	}
	if !strings.Contains(lines[1], "fd-find") || !strings.Contains(lines[1], "network unreachable") {
		t.Errorf("line 1 = %q, missing expected substrings", lines[1])
	}
}

func TestFormatErrorMultiValidate(t *testing.T) {
	err := &manifest.ErrMultiValidate{
		Errs: []*manifest.ErrValidate{
			{Provider: manifest.Cargo, Name: "tool-a", Cause: "missing version"},
			{Provider: manifest.Cargo, Name: "tool-b", Cause: "invalid git ref"},
		},
	}
	got := FormatError(err)
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("FormatError(%v) = %q, want exactly 2 lines", err, got)
	}
	if !strings.Contains(got, "missing version") || !strings.Contains(got, "invalid git ref") {
		t.Errorf("FormatError(%v) = %q, missing expected substrings", err, got)
	}
}
