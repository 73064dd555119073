// Package cmd implements the piecewise command-line interface: a thin
// driver over internal/buffer.Document for exercising and scripting
// the buffer core from a shell without embedding it in a full editor.
package cmd

import (
	kongcompletion "github.com/jotaen/kong-completion"
)

// CLI is the root command structure for Kong.
type CLI struct {
	Palette string `name:"palette" help:"Overlay style palette to use for styled output" default:"default"`

	Open    OpenCmd    `cmd:"" help:"Print a document's size and line count"`
	Slice   SliceCmd   `cmd:"" help:"Print the bytes in a byte range"`
	Insert  InsertCmd  `cmd:"" help:"Insert text at a byte offset and save"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a byte range and save"`
	Overlay OverlayCmd `cmd:"" help:"Manage style overlays on a document"`
	Yank    YankCmd    `cmd:"" help:"Copy a byte range to the clipboard"`

	Completion kongcompletion.Completion `cmd:"" help:"Generate shell completions"`
}
