package progress

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Select returns the Interactive reporter when quiet is false and stderr is
// a terminal, and NoOpReporter otherwise — matching how the CLI decides
// whether to render a spinner or stay silent for piped/CI output.
func Select(quiet bool, out io.Writer) Reporter {
	if quiet {
		return NoOpReporter{}
	}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return NewInteractive(f)
	}
	return NoOpReporter{}
}
