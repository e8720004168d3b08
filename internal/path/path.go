// Package path provides path selector abstractions for navigating value trees.
package path

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Path represents a selector for navigating a value tree.
type Path interface {
	// Segments returns the path as a slice of string keys.
	Segments() []string

	// String returns a canonical string representation.
	String() string
}

// ArrayPath is a path specified as an array of string keys.
// Example: ["server", "port"]
type ArrayPath struct {
	segments []string
}

// NewArrayPath creates a new ArrayPath from string segments.
func NewArrayPath(segments []string) *ArrayPath {
	return &ArrayPath{segments: segments}
}

// ParseArrayPath parses a JSON array string into an ArrayPath.
// Example input: `["server", "port"]`
func ParseArrayPath(s string) (*ArrayPath, error) {
	var segments []string
	if err := json.Unmarshal([]byte(s), &segments); err != nil {
		return nil, fmt.Errorf("invalid path array: %w", err)
	}
	return &ArrayPath{segments: segments}, nil
}

// Parse accepts either a JSON array (`["a.b", "c"]`) or a dotted key
// (`server.port`). The array form allows keys that contain dots.
func Parse(s string) (*ArrayPath, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return ParseArrayPath(s)
	}
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}

	segments := strings.Split(s, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", s)
		}
	}
	return &ArrayPath{segments: segments}, nil
}

// Segments returns the path segments.
func (p *ArrayPath) Segments() []string {
	return p.segments
}

// String returns the path as a JSON array string.
func (p *ArrayPath) String() string {
	data, _ := json.Marshal(p.segments)
	return string(data)
}
