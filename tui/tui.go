// Package tui holds terminal UI helpers shared by pulse's interactive views.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// InitializeTUI forces a truecolor profile when CLICOLOR_FORCE=1 or
// COLORTERM=truecolor, so styled output survives pipes and CI terminals.
func InitializeTUI() {
	if ForceColor() {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// ForceColor reports whether the environment requests colored output.
func ForceColor() bool {
	return os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor"
}
