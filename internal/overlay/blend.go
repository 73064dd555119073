package overlay

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// foregroundBlendToward nudges fg a small amount toward bg in Lab
// space, so a lower-priority overlay's foreground stays legible
// against a higher-priority overlay's background rather than clashing
// outright. Both colors must be parseable hex strings ("#rrggbb");
// anything else (an ANSI-256 index, an empty color) is returned
// unchanged, since go-colorful has no notion of the terminal's
// 256-color palette.
func foregroundBlendToward(fg, bg lipgloss.Color, amount float64) lipgloss.Color {
	fgColor, err := colorful.Hex(string(fg))
	if err != nil {
		return fg
	}
	bgColor, err := colorful.Hex(string(bg))
	if err != nil {
		return fg
	}

	blended := fgColor.BlendLab(bgColor, amount)

	return lipgloss.Color(blended.Hex())
}

// blendTowardAmount is how far a carried-over foreground moves toward
// a newly layered background, per composition step.
const blendTowardAmount = 0.15
