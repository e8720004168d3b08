// Package merge overlays runtime overrides onto loaded configuration trees.
package merge

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/path"
)

// Override replaces the value at Path.
type Override struct {
	Path  path.Path
	Value any
}

// Apply returns a deep copy of base with every override applied in order.
// A single-segment override replaces the top-level key outright, so
// overrides always win over values from base.
func Apply(base *orderedmap.OrderedMap, overrides []Override) (*orderedmap.OrderedMap, error) {
	result := format.NewMap()
	if base != nil {
		result = deepCopy(base).(*orderedmap.OrderedMap)
	}

	for _, o := range overrides {
		if err := SetPath(result, o.Path, o.Value); err != nil {
			return nil, fmt.Errorf("override %s: %w", o.Path, err)
		}
	}
	return result, nil
}

// GetPath extracts a value at the given path.
func GetPath(tree any, p path.Path) (any, bool) {
	current := tree
	for _, segment := range p.Segments() {
		om := format.ToOrderedMapPtr(current)
		if om == nil {
			return nil, false
		}
		val, exists := om.Get(segment)
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

// SetPath sets a value at the given path.
// Creates intermediate maps as needed.
func SetPath(tree any, p path.Path, value any) error {
	segments := p.Segments()
	if len(segments) == 0 {
		return fmt.Errorf("empty path")
	}

	om := format.ToOrderedMapPtr(tree)
	if om == nil {
		return fmt.Errorf("tree is not a map")
	}

	// Navigate to parent, creating intermediate maps as needed
	for _, segment := range segments[:len(segments)-1] {
		next, exists := om.Get(segment)
		if !exists {
			next = format.NewMap()
			om.Set(segment, next)
		}
		nextMap := format.ToOrderedMapPtr(next)
		if nextMap == nil {
			return fmt.Errorf("path segment %q is not a map", segment)
		}
		if _, isValue := next.(orderedmap.OrderedMap); isValue {
			// Store the pointer so later writes land in the tree.
			om.Set(segment, nextMap)
		}
		om = nextMap
	}

	// Set the final value
	om.Set(segments[len(segments)-1], value)
	return nil
}

// deepCopy creates a deep copy of a value tree.
func deepCopy(v any) any {
	if om := format.ToOrderedMapPtr(v); om != nil {
		result := format.NewMap()
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			result.Set(k, deepCopy(child))
		}
		return result
	}
	if items, ok := v.([]any); ok {
		result := make([]any, len(items))
		for i, item := range items {
			result[i] = deepCopy(item)
		}
		return result
	}
	// Scalars are immutable
	return v
}
