package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/isobin/isobin/cmd"
	"github.com/isobin/isobin/internal/rundispatch"
	"github.com/isobin/isobin/internal/sentry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// RecoverAndPanic must be deferred first so it runs last, after
	// cleanup has flushed any queued Sentry events.
	defer sentry.RecoverAndPanic()
	cleanup := sentry.Init(cmd.Version)
	defer cleanup()

	if err := cmd.Execute(); err != nil {
		sentry.CaptureError(err)

		var failed *rundispatch.RunFailed
		if errors.As(err, &failed) {
			return failed.Status
		}

		fmt.Fprintln(os.Stderr, cmd.FormatError(err))
		return 1
	}
	return 0
}
