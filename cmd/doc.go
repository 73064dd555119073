package cmd

import (
	"github.com/spf13/afero"

	"github.com/connerohnesorge/piecewise/internal/bufconfig"
	"github.com/connerohnesorge/piecewise/internal/buffer"
)

// openDocument loads path through the OS filesystem with host defaults
// read from piecewise.yaml (or built-in defaults if none is found).
func openDocument(path string) (*buffer.Document, error) {
	opts, err := bufconfig.Load()
	if err != nil {
		return nil, err
	}

	return buffer.Load(afero.NewOsFs(), path, *opts)
}
