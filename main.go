package main

import (
	"github.com/alecthomas/kong"

	"github.com/connerohnesorge/piecewise/cmd"
	"github.com/connerohnesorge/piecewise/internal/theme"
)

func main() {
	cli := &cmd.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("piecewise"),
		kong.Description("Piece-tree buffer core: inspect, edit, and annotate documents from a shell"),
		kong.UsageOnError(),
	)

	// Load the requested palette eagerly so overlay-add's default Run
	// path (no palette flag) still resolves styles correctly.
	_ = theme.Load(cli.Palette)

	err := ctx.Run(cli)
	ctx.FatalIfErrorf(err)
}
