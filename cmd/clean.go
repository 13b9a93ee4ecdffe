package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/isobin/isobin/internal/workspace"
)

var successBullet = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the workspace and forget it, so the next install starts fresh",
	RunE:  runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	manifestPath, err := resolveManifestPath()
	if err != nil {
		return err
	}
	manifestDir := filepath.Dir(manifestPath)

	reg, err := workspace.NewRegistry()
	if err != nil {
		return err
	}
	ws, err := reg.Resolve(manifestDir)
	if err != nil {
		return err
	}

	if err := ws.RemoveAll(); err != nil {
		return err
	}
	if err := reg.Forget(manifestDir); err != nil {
		return err
	}

	if !quietFlag {
		fmt.Fprintf(os.Stderr, "%s removed workspace %s\n", successBullet, ws.ID)
	}
	return nil
}
