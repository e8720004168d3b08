// Package fileio resolves format handlers from tags or file paths and
// provides format-agnostic load/save entry points.
package fileio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/format/json"
	"github.com/thirteen37/confio/internal/format/toml"
	"github.com/thirteen37/confio/internal/format/xml"
	"github.com/thirteen37/confio/internal/format/yaml"
)

// supportedFormats lists format tags in the order they are reported.
var supportedFormats = []format.Format{format.JSON, format.YAML, format.TOML, format.XML}

// supportedExtensions lists the recognised suffixes in the order they are reported.
var supportedExtensions = []string{"json", "yaml", "yml", "toml", "xml"}

// extensionFormats maps a lower-case suffix to its format tag.
var extensionFormats = map[string]format.Format{
	"json": format.JSON,
	"yaml": format.YAML,
	"yml":  format.YAML,
	"toml": format.TOML,
	"xml":  format.XML,
}

// SupportedFormats returns the format tags Create accepts.
func SupportedFormats() []format.Format {
	return append([]format.Format(nil), supportedFormats...)
}

// SupportedExtensions returns the suffixes FromPath accepts, without dots.
func SupportedExtensions() []string {
	return append([]string(nil), supportedExtensions...)
}

// Create returns a fresh handler for the format tag.
func Create(f format.Format) (format.Handler, error) {
	switch f {
	case format.JSON:
		return json.New(), nil
	case format.YAML:
		return yaml.New(), nil
	case format.TOML:
		return toml.New(), nil
	case format.XML:
		return xml.New(), nil
	}

	names := make([]string, len(supportedFormats))
	for i, sf := range supportedFormats {
		names[i] = string(sf)
	}
	return nil, fmt.Errorf("%w: %s. Supported formats: %s", format.ErrUnsupportedFormat, f, strings.Join(names, ", "))
}

// DetectFormat derives the format tag from path's extension, ignoring case.
func DetectFormat(path string) (format.Format, error) {
	base := filepath.Base(path)
	// A leading dot marks a hidden file, not an extension.
	suffix := strings.TrimPrefix(filepath.Ext(strings.TrimPrefix(base, ".")), ".")
	if suffix == "" {
		return "", fmt.Errorf("%w in %s", format.ErrNoExtension, path)
	}

	f, ok := extensionFormats[strings.ToLower(suffix)]
	if !ok {
		return "", fmt.Errorf("%w: .%s. Supported extensions: %s", format.ErrUnsupportedExtension, suffix, strings.Join(supportedExtensions, ", "))
	}
	return f, nil
}

// FromPath returns a fresh handler for the format detected from path.
func FromPath(path string) (format.Handler, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return Create(f)
}
