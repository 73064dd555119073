package cmd

import (
	"fmt"

	"github.com/connerohnesorge/piecewise/internal/buffer"
	"github.com/connerohnesorge/piecewise/internal/clip"
)

// YankCmd copies the bytes in [Start, End) to the system clipboard.
type YankCmd struct {
	Path  string `arg:"" help:"Path to the document"`
	Start int    `arg:"" help:"Start byte offset"`
	End   int    `arg:"" help:"End byte offset (exclusive)"`
}

// Run implements YankCmd.
func (c *YankCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	b, err := d.Slice(buffer.Range{Start: c.Start, End: c.End})
	if err != nil {
		return err
	}

	if err := clip.Copy(string(b)); err != nil {
		return err
	}

	fmt.Printf("copied %d bytes to clipboard\n", len(b))

	return nil
}
