package progress

import (
	"errors"
	"os"
	"testing"
)

func TestNoOpReporterDoesNotPanic(t *testing.T) {
	r := NoOpReporter{}
	p := r.MakeProgress("ripgrep")
	p.PrepareInstall()
	p.StartInstall()
	p.ReadyInstall()
	p.DoneInstall()
	p.FailedInstall(errors.New("boom"))
	p.StartUninstall()
	p.ReadyUninstall()
	p.DoneUninstall()
	p.FailedUninstall(errors.New("boom"))
	p.AlreadyInstalled()
	r.Close()
}

func TestSelectQuietAlwaysReturnsNoOp(t *testing.T) {
	r := Select(true, os.Stderr)
	if _, ok := r.(NoOpReporter); !ok {
		t.Errorf("Select(quiet=true) = %T, want NoOpReporter", r)
	}
}

func TestSelectNonTerminalReturnsNoOp(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := Select(false, f)
	if _, ok := r.(NoOpReporter); !ok {
		t.Errorf("Select(non-tty) = %T, want NoOpReporter", r)
	}
}
