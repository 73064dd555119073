// This file provides shell completion predictors for the piecewise
// CLI: context-aware suggestions for tab completion in supported
// shells (bash, zsh, fish).
package cmd

import (
	"os"

	"github.com/posener/complete"

	"github.com/connerohnesorge/piecewise/internal/theme"
)

func paletteNames() []string {
	return theme.Available()
}

// PredictPaletteNames returns a predictor that suggests the registered
// palette names for the --palette flag.
func PredictPaletteNames() complete.Predictor {
	return complete.PredictFunc(func(_ complete.Args) []string {
		return paletteNames()
	})
}

// PredictFiles returns a predictor that suggests filesystem paths in
// the current directory, for the document-path arguments.
func PredictFiles() complete.Predictor {
	return complete.PredictFunc(func(_ complete.Args) []string {
		entries, err := os.ReadDir(".")
		if err != nil {
			return nil
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}

		return names
	})
}
