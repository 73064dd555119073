// Package bufconfig handles loading host-provided defaults for the
// buffer core's load/apply behavior.
package bufconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the host-defaults file.
	ConfigFileName = "piecewise.yaml"

	// DefaultLargeFileThreshold is the file size, in bytes, at or
	// above which a document loads in large-file mode.
	DefaultLargeFileThreshold int64 = 100 * 1024 * 1024
	// DefaultChunkSize is the minimum size of a lazy chunk load.
	DefaultChunkSize = 1 * 1024 * 1024
	// DefaultChunkAlignment is the boundary chunk loads are rounded to.
	DefaultChunkAlignment = 64 * 1024
	// DefaultMaxCachedChunks bounds the loaded-chunk LRU; 0 disables
	// eviction.
	DefaultMaxCachedChunks = 100
	// DefaultAssumedLineLength seeds large-file position approximation.
	DefaultAssumedLineLength = 80
)

// Options holds the host-configurable values that govern Document.Load
// and its large-file behavior.
type Options struct {
	// LargeFileThreshold is the byte-size cutoff for large-file mode.
	LargeFileThreshold int64 `yaml:"large_file_threshold"`
	// ForceLarge forces large-file mode regardless of file size.
	ForceLarge bool `yaml:"force_large"`
	// EagerLineIndex computes line-starts even for a file that would
	// otherwise stay unindexed.
	EagerLineIndex bool `yaml:"eager_line_index"`
	// ChunkSize is the minimum size of a lazy chunk load, in bytes.
	ChunkSize int `yaml:"chunk_size"`
	// ChunkAlignment is the boundary chunk loads are rounded to.
	ChunkAlignment int `yaml:"chunk_alignment"`
	// MaxCachedChunks bounds the loaded-chunk LRU; 0 disables eviction.
	MaxCachedChunks int `yaml:"max_cached_chunks"`
	// AssumedLineLength seeds the large-file position approximation.
	AssumedLineLength int `yaml:"assumed_line_length"`
	// ForceLineIndex computes line-starts even in large-file mode.
	ForceLineIndex bool `yaml:"force_line_index"`

	// ConfigPath is the absolute path to the file these options were
	// parsed from, or "" if defaults were used.
	ConfigPath string `yaml:"-"`
}

// Defaults returns the built-in option values.
func Defaults() *Options {
	return &Options{
		LargeFileThreshold: DefaultLargeFileThreshold,
		ChunkSize:          DefaultChunkSize,
		ChunkAlignment:     DefaultChunkAlignment,
		MaxCachedChunks:    DefaultMaxCachedChunks,
		AssumedLineLength:  DefaultAssumedLineLength,
	}
}

// Load searches for piecewise.yaml starting from the current working
// directory, walking up the directory tree. If found, it parses the
// file; if not, it returns Defaults().
func Load() (*Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return LoadFromPath(cwd)
}

// LoadFromPath searches for piecewise.yaml starting from startPath,
// walking up the directory tree. If found, it parses the file and
// fills in any field the file left zero with the built-in default,
// except max_cached_chunks, where an explicit 0 (eviction disabled) is
// kept; if not found, it returns Defaults() unchanged.
func LoadFromPath(startPath string) (*Options, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to resolve absolute path for %q: %w",
			startPath,
			err,
		)
	}

	currentPath := absPath
	for {
		configPath := filepath.Join(currentPath, ConfigFileName)

		if _, err := os.Stat(configPath); err == nil {
			opts, err := parseConfigFile(configPath)
			if err != nil {
				return nil, err
			}
			opts.ConfigPath = configPath

			if err := opts.validate(); err != nil {
				return nil, fmt.Errorf(
					"invalid configuration in %s: %w",
					configPath,
					err,
				)
			}

			return opts, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	return Defaults(), nil
}

func parseConfigFile(configPath string) (*Options, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := Defaults()
	if err := yaml.Unmarshal(data, opts); err != nil {
		var yamlErr *yaml.TypeError
		if errors.As(err, &yamlErr) {
			return nil, fmt.Errorf("invalid YAML syntax: %v", yamlErr.Errors)
		}

		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyZeroDefaults(opts)

	return opts, nil
}

// applyZeroDefaults fills in fields the YAML document left at their
// zero value, the same way config.parseConfigFile defaults RootDir and
// Theme when absent.
func applyZeroDefaults(opts *Options) {
	if opts.LargeFileThreshold == 0 {
		opts.LargeFileThreshold = DefaultLargeFileThreshold
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkAlignment == 0 {
		opts.ChunkAlignment = DefaultChunkAlignment
	}
	if opts.AssumedLineLength == 0 {
		opts.AssumedLineLength = DefaultAssumedLineLength
	}
}

// validate checks invariants on the parsed options.
func (o *Options) validate() error {
	if o.LargeFileThreshold < 0 {
		return errors.New("large_file_threshold cannot be negative")
	}
	if o.ChunkSize <= 0 {
		return errors.New("chunk_size must be positive")
	}
	if o.ChunkAlignment <= 0 {
		return errors.New("chunk_alignment must be positive")
	}
	if o.MaxCachedChunks < 0 {
		return errors.New("max_cached_chunks cannot be negative")
	}
	if o.AssumedLineLength <= 0 {
		return errors.New("assumed_line_length must be positive")
	}

	return nil
}
