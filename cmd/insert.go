package cmd

import (
	"fmt"

	"github.com/connerohnesorge/piecewise/internal/buffer"
)

// InsertCmd inserts Text at Offset and saves the result back to Path.
type InsertCmd struct {
	Path   string `arg:"" help:"Path to the document"`
	Offset int    `arg:"" help:"Byte offset to insert at"`
	Text   string `arg:"" help:"Text to insert"`
}

// Run implements InsertCmd.
func (c *InsertCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	if err := d.Apply(buffer.InsertEvent{Offset: c.Offset, Bytes: []byte(c.Text)}); err != nil {
		return err
	}

	if err := d.Save(); err != nil {
		return err
	}

	fmt.Printf("%s: inserted %d bytes at offset %d\n", c.Path, len(c.Text), c.Offset)

	return nil
}
