package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var errorBullet = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Render("✗")

// multiError is satisfied by provider.MultiInstallError and
// manifest.ErrMultiValidate, letting formatError flatten either into one
// line per underlying failure instead of one opaque aggregate message.
type multiError interface {
	error
	Unwrap() []error
}

// FormatError renders err for the terminal, recursively unwrapping
// aggregate errors into one bulleted line per failure.
func FormatError(err error) string {
	if me, ok := err.(multiError); ok {
		var b strings.Builder
		for i, sub := range me.Unwrap() {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(FormatError(sub))
		}
		return b.String()
	}
	return errorBullet + " " + err.Error()
}
