// Package termfmt renders overlay.Style-tagged text for a terminal,
// falling back to plain text when stdout isn't one.
package termfmt

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/connerohnesorge/piecewise/internal/overlay"
)

// IsTTY reports whether stdout is attached to a terminal. Commands
// that print overlay-styled output use this to decide between ANSI
// escapes and plain text.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Render applies style to text if stdout is a terminal, otherwise
// returns text unchanged.
func Render(style overlay.Style, text string) string {
	if !IsTTY() {
		return text
	}

	s := lipgloss.NewStyle()
	if style.Foreground != "" {
		s = s.Foreground(style.Foreground)
	}
	if style.Background != "" {
		s = s.Background(style.Background)
	}
	if style.Underline {
		s = s.Underline(true)
	}
	if style.Strikethrough {
		s = s.Strikethrough(true)
	}

	return s.Render(text)
}
