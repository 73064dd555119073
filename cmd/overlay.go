package cmd

import (
	"fmt"

	"github.com/connerohnesorge/piecewise/internal/buffer"
	"github.com/connerohnesorge/piecewise/internal/overlay"
	"github.com/connerohnesorge/piecewise/internal/termfmt"
	"github.com/connerohnesorge/piecewise/internal/theme"
)

// OverlayCmd groups the overlay-management subcommands.
type OverlayCmd struct {
	Add    OverlayAddCmd    `cmd:"" help:"Add a style overlay over a byte range"`
	List   OverlayListCmd   `cmd:"" help:"List overlays intersecting a byte range"`
	Remove OverlayRemoveCmd `cmd:"" help:"Remove an overlay, or every overlay sharing an id prefix"`
}

// OverlayAddCmd paints a palette preset over [Start, End).
type OverlayAddCmd struct {
	Path  string `arg:"" help:"Path to the document"`
	Start int    `arg:"" help:"Start byte offset"`
	End   int    `arg:"" help:"End byte offset (exclusive)"`
	Kind  string `name:"kind" help:"Palette preset: error, warning, info, search, highlight" default:"highlight"`
	ID    string `name:"id" help:"Overlay id (auto-generated if omitted)"`
}

// Run implements OverlayAddCmd.
func (c *OverlayAddCmd) Run(cli *CLI) error {
	if err := theme.Load(cli.Palette); err != nil {
		return err
	}

	style, err := theme.Current().StyleForKind(c.Kind)
	if err != nil {
		return err
	}

	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	id, err := d.AddOverlay(buffer.Range{Start: c.Start, End: c.End}, style, overlay.Options{ID: c.ID})
	if err != nil {
		return err
	}

	fmt.Println(id)

	return nil
}

// OverlayListCmd prints every overlay intersecting [Start, End), styled
// when stdout is a terminal.
type OverlayListCmd struct {
	Path  string `arg:"" help:"Path to the document"`
	Start int    `arg:"" help:"Start byte offset"`
	End   int    `arg:"" help:"End byte offset (exclusive)"`
}

// Run implements OverlayListCmd.
func (c *OverlayListCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	overlaps := d.OverlaysIn(buffer.Range{Start: c.Start, End: c.End})
	for _, ov := range overlaps {
		label := fmt.Sprintf("%s [%d, %d) priority=%d", ov.ID, ov.Start, ov.End, ov.Priority)
		fmt.Println(termfmt.Render(ov.Style, label))
	}

	return nil
}

// OverlayRemoveCmd removes a single overlay by id, or every overlay
// whose id starts with Prefix when Prefix is set.
type OverlayRemoveCmd struct {
	Path   string `arg:"" help:"Path to the document"`
	ID     string `arg:"" optional:"" help:"Overlay id to remove"`
	Prefix string `name:"prefix" help:"Remove every overlay whose id starts with this prefix instead"`
}

// Run implements OverlayRemoveCmd.
func (c *OverlayRemoveCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	if c.Prefix != "" {
		removed, errs := d.RemoveOverlaysByIDPrefix(c.Prefix)
		fmt.Printf("removed %d overlays\n", removed)

		if len(errs) > 0 {
			return errs[0]
		}

		return nil
	}

	return d.RemoveOverlay(c.ID)
}
