// Package format provides the handler contract shared by every file format codec.
package format

import "errors"

// Format identifies a file format that can be selected by extension.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	XML  Format = "xml"
)

var (
	// ErrNoExtension is returned when a path has no suffix to detect a format from.
	ErrNoExtension = errors.New("cannot detect file format: no extension")

	// ErrUnsupportedExtension is returned when a path's suffix maps to no known format.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrUnsupportedFormat is returned when a format tag has no handler.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse wraps syntax errors reported by a format library.
	ErrParse = errors.New("parse error")

	// ErrSerialize is returned when a value cannot be represented in a format.
	ErrSerialize = errors.New("serialization error")

	// ErrNotMapping is returned when a config file does not decode to a mapping.
	ErrNotMapping = errors.New("config is not a mapping")
)

// SaveOptions configures how Save prepares the destination directory.
type SaveOptions struct {
	// Parents creates missing ancestor directories of the destination.
	// When false the parent directory must already exist.
	Parents bool

	// ExistOK tolerates an already existing parent directory when Parents is set.
	ExistOK bool
}

// DefaultSaveOptions returns options that create parents and tolerate existing ones.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Parents: true, ExistOK: true}
}

// Handler defines the interface every file format codec implements.
type Handler interface {
	// Load reads the file at path and returns a generic value tree.
	Load(path string) (any, error)

	// Save serializes value and overwrites the file at path.
	Save(value any, path string, opts SaveOptions) error
}
