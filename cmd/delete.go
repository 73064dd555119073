package cmd

import (
	"fmt"

	"github.com/connerohnesorge/piecewise/internal/buffer"
)

// DeleteCmd deletes [Start, End) and saves the result back to Path.
type DeleteCmd struct {
	Path  string `arg:"" help:"Path to the document"`
	Start int    `arg:"" help:"Start byte offset"`
	End   int    `arg:"" help:"End byte offset (exclusive)"`
}

// Run implements DeleteCmd.
func (c *DeleteCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	if err := d.Apply(buffer.DeleteEvent{Range: buffer.Range{Start: c.Start, End: c.End}}); err != nil {
		return err
	}

	if err := d.Save(); err != nil {
		return err
	}

	fmt.Printf("%s: deleted [%d, %d)\n", c.Path, c.Start, c.End)

	return nil
}
