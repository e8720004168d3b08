// Package config loads configuration files and layers runtime overrides on top.
package config

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/iancoleman/orderedmap"
	"github.com/thirteen37/confio/internal/fileio"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/merge"
)

// LoadConfig loads a JSON, YAML, TOML or XML file whose top level must be a mapping.
// Format detection errors from fileio are returned unchanged; a file that
// parses to anything but a mapping yields format.ErrNotMapping.
func LoadConfig(path string) (*orderedmap.OrderedMap, error) {
	data, err := fileio.LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := format.ToOrderedMapPtr(data)
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file %q did not return a mapping, got %s", format.ErrNotMapping, path, format.ShapeOf(data))
	}
	return cfg, nil
}

// LoadCLIConfig loads the config file at path, if any, and applies
// overrides on top. Overrides win over file values on key collision.
// With an empty path the overrides alone form the config.
func LoadCLIConfig(logger *log.Logger, path string, overrides []merge.Override) (*orderedmap.OrderedMap, error) {
	if logger == nil {
		logger = log.Default()
	}

	var base *orderedmap.OrderedMap
	if path != "" {
		logger.Info("loading configuration", "path", path)
		cfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		base = cfg
	} else {
		logger.Info("no config file provided; using runtime arguments only")
	}

	merged, err := merge.Apply(base, overrides)
	if err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		keys := make([]string, len(overrides))
		for i, o := range overrides {
			keys[i] = o.Path.String()
		}
		logger.Info("applied overrides", "keys", keys)
	}
	return merged, nil
}
