package cmd

import (
	"fmt"
	"os"

	"github.com/connerohnesorge/piecewise/internal/buffer"
)

// SliceCmd prints the raw bytes in [Start, End) to stdout.
type SliceCmd struct {
	Path  string `arg:"" help:"Path to the document"`
	Start int    `arg:"" help:"Start byte offset"`
	End   int    `arg:"" help:"End byte offset (exclusive)"`
}

// Run implements SliceCmd.
func (c *SliceCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	b, err := d.Slice(buffer.Range{Start: c.Start, End: c.End})
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(b)
	if err == nil {
		fmt.Println()
	}

	return err
}
