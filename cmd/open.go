package cmd

import "fmt"

// OpenCmd prints a document's size and line count without mutating it.
type OpenCmd struct {
	Path string `arg:"" help:"Path to the document"`
}

// Run implements OpenCmd.
func (c *OpenCmd) Run() error {
	d, err := openDocument(c.Path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d bytes, %d lines\n", c.Path, d.TotalBytes(), d.LineCount())

	return nil
}
