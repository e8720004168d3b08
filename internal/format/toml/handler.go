// Package toml provides the TOML format handler.
package toml

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/thirteen37/confio/internal/format"
)

// Handler implements format.Handler for TOML files.
type Handler struct{}

// New creates a new TOML handler.
func New() *Handler {
	return &Handler{}
}

// Load reads a TOML file into an *orderedmap.OrderedMap.
// Key order from the original TOML document is preserved.
func (h *Handler) Load(path string) (any, error) {
	data, err := format.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tree, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Save writes value as TOML. The value must be a mapping and must not
// contain nil anywhere; both are reported before the file is touched.
func (h *Handler) Save(value any, path string, opts format.SaveOptions) error {
	data, err := Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return format.WriteFile(path, data, opts)
}

// Unmarshal decodes TOML bytes into an ordered value tree.
func Unmarshal(data []byte) (any, error) {
	// Decode into a generic map to get values
	var raw map[string]any
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse TOML: %w", format.ErrParse, err)
	}

	// Convert to ordered map using metadata for key order
	return convertToOrderedMapWithMeta(raw, meta, nil), nil
}

// Marshal encodes a mapping as TOML using the standard table layout.
func Marshal(value any) ([]byte, error) {
	tree, err := format.Normalize(value)
	if err != nil {
		return nil, err
	}
	if format.ToOrderedMapPtr(tree) == nil {
		return nil, fmt.Errorf("%w: TOML document must be a mapping, got %s", format.ErrSerialize, format.ShapeOf(tree))
	}
	if at, found := findNull(tree, nil); found {
		return nil, fmt.Errorf("%w: TOML cannot represent null at %q", format.ErrSerialize, at)
	}

	// BurntSushi/toml sorts map keys, so plain maps lose nothing here.
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = ""
	if err := encoder.Encode(format.Plain(tree)); err != nil {
		return nil, fmt.Errorf("%w: failed to serialize TOML: %w", format.ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// findNull returns the dotted location of the first nil in v.
func findNull(v any, prefix []string) (string, bool) {
	if v == nil {
		return strings.Join(prefix, "."), true
	}
	if om := format.ToOrderedMapPtr(v); om != nil {
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			if at, found := findNull(child, append(slices.Clone(prefix), k)); found {
				return at, true
			}
		}
		return "", false
	}
	if items, ok := v.([]any); ok {
		for i, item := range items {
			if at, found := findNull(item, append(slices.Clone(prefix), fmt.Sprintf("[%d]", i))); found {
				return at, true
			}
		}
	}
	return "", false
}

// convertToOrderedMapWithMeta recursively converts map[string]any to *orderedmap.OrderedMap
// using TOML metadata to preserve key order.
func convertToOrderedMapWithMeta(v any, meta toml.MetaData, prefix []string) any {
	switch val := v.(type) {
	case map[string]any:
		result := format.NewMap()

		// Get keys in document order from metadata
		keys := getKeysInOrder(meta, prefix, val)

		for _, k := range keys {
			childPrefix := append(slices.Clone(prefix), k)
			result.Set(k, convertToOrderedMapWithMeta(val[k], meta, childPrefix))
		}
		return result
	case []map[string]any:
		// Array of tables; metadata records their keys without an index.
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = convertToOrderedMapWithMeta(item, meta, prefix)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = convertToOrderedMapWithMeta(item, meta, prefix)
		}
		return result
	default:
		return val
	}
}

// getKeysInOrder returns map keys in document order using TOML metadata.
func getKeysInOrder(meta toml.MetaData, prefix []string, m map[string]any) []string {
	ordered := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))

	for _, key := range meta.Keys() {
		// Check if this key matches our prefix + one more segment
		if len(key) != len(prefix)+1 || !slices.Equal([]string(key[:len(prefix)]), prefix) {
			continue
		}
		k := key[len(prefix)]
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			ordered = append(ordered, k)
		}
	}

	// Keys inside inline tables in arrays are not in the metadata.
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)

	return append(ordered, rest...)
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
