// Package theme provides named overlay.Style presets that hosts and
// the demo CLI can look up by a short string rather than constructing
// lipgloss colors by hand for every diagnostic, search hit, or
// annotation kind they paint.
package theme

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/connerohnesorge/piecewise/internal/overlay"
)

// Palette is a named set of overlay styles for the annotation kinds a
// host commonly paints: diagnostics at three severities, search
// matches, and a generic highlight for ad-hoc plugin use.
type Palette struct {
	Error     overlay.Style
	Warning   overlay.Style
	Info      overlay.Style
	SearchHit overlay.Style
	Highlight overlay.Style
}

var defaultPalette = &Palette{
	Error:     overlay.Style{Foreground: lipgloss.Color("231"), Background: lipgloss.Color("196")},
	Warning:   overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("3")},
	Info:      overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("33")},
	SearchHit: overlay.Style{Background: lipgloss.Color("229"), Underline: true},
	Highlight: overlay.Style{Background: lipgloss.Color("57")},
}

var darkPalette = &Palette{
	Error:     overlay.Style{Foreground: lipgloss.Color("231"), Background: lipgloss.Color("196")},
	Warning:   overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("226")},
	Info:      overlay.Style{Foreground: lipgloss.Color("231"), Background: lipgloss.Color("61")},
	SearchHit: overlay.Style{Background: lipgloss.Color("213"), Underline: true},
	Highlight: overlay.Style{Background: lipgloss.Color("61")},
}

var lightPalette = &Palette{
	Error:     overlay.Style{Foreground: lipgloss.Color("231"), Background: lipgloss.Color("160")},
	Warning:   overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("136")},
	Info:      overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("125")},
	SearchHit: overlay.Style{Background: lipgloss.Color("189"), Underline: true},
	Highlight: overlay.Style{Background: lipgloss.Color("189")},
}

var solarizedPalette = &Palette{
	Error:     overlay.Style{Foreground: lipgloss.Color("230"), Background: lipgloss.Color("160")},
	Warning:   overlay.Style{Foreground: lipgloss.Color("235"), Background: lipgloss.Color("136")},
	Info:      overlay.Style{Foreground: lipgloss.Color("230"), Background: lipgloss.Color("33")},
	SearchHit: overlay.Style{Background: lipgloss.Color("230"), Underline: true},
	Highlight: overlay.Style{Background: lipgloss.Color("235")},
}

var monokaiPalette = &Palette{
	Error:     overlay.Style{Foreground: lipgloss.Color("231"), Background: lipgloss.Color("197")},
	Warning:   overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("208")},
	Info:      overlay.Style{Foreground: lipgloss.Color("16"), Background: lipgloss.Color("81")},
	SearchHit: overlay.Style{Background: lipgloss.Color("148"), Underline: true},
	Highlight: overlay.Style{Background: lipgloss.Color("237")},
}

// palettes is the registry of every named palette a host may select.
var palettes = map[string]*Palette{
	"default":   defaultPalette,
	"dark":      darkPalette,
	"light":     lightPalette,
	"solarized": solarizedPalette,
	"monokai":   monokaiPalette,
}

// current holds the currently active palette.
var current *Palette

// Get returns the palette registered under name.
func Get(name string) (*Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("palette not found: %s", name)
	}

	return p, nil
}

// Load sets name as the current palette.
func Load(name string) error {
	p, err := Get(name)
	if err != nil {
		return err
	}
	current = p

	return nil
}

// Current returns the active palette, defaulting to "default" if Load
// was never called.
func Current() *Palette {
	if current == nil {
		return defaultPalette
	}

	return current
}

// Available returns every palette name, sorted.
func Available() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// StyleForKind looks up one of the palette's fixed overlay kinds by
// name ("error", "warning", "info", "search", "highlight"), used by
// the demo CLI's overlay-add subcommand so a caller can pass
// --kind=error instead of assembling a Style by hand.
func (p *Palette) StyleForKind(kind string) (overlay.Style, error) {
	switch kind {
	case "error":
		return p.Error, nil
	case "warning":
		return p.Warning, nil
	case "info":
		return p.Info, nil
	case "search":
		return p.SearchHit, nil
	case "highlight":
		return p.Highlight, nil
	default:
		return overlay.Style{}, fmt.Errorf("unknown overlay kind: %s", kind)
	}
}
