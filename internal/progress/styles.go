package progress

import "github.com/charmbracelet/lipgloss"

const (
	colorSuccess = "42"
	colorError   = "203"
	colorMuted   = "240"
	colorAccent  = "45"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))
)

func icon(state targetState) string {
	switch state {
	case stateDoneInstall, stateDoneUninstall, stateAlready:
		return successStyle.Render("✓")
	case stateFailed:
		return errorStyle.Render("✗")
	default:
		return accentStyle.Render("•")
	}
}
