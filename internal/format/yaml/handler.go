// Package yaml provides the YAML format handler.
//
// Mappings are decoded with goccy/go-yaml's ordered map support so key order
// survives a load/save cycle. Files are written in block style with a
// 4-space indent.
package yaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/thirteen37/confio/internal/format"
)

// IndentSpaces is the indentation width used when writing YAML files.
const IndentSpaces = 4

// Handler implements format.Handler for YAML files.
type Handler struct{}

// New creates a new YAML handler.
func New() *Handler {
	return &Handler{}
}

// Load reads a YAML file into a generic value tree.
// An empty document loads as nil.
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

// Save writes value as block-style YAML.
func (h *Handler) Save(value any, path string, opts format.SaveOptions) error {
	data, err := Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return format.WriteFile(path, data, opts)
}

// Marshal encodes value as block-style YAML.
func Marshal(value any) ([]byte, error) {
	tree, err := format.Normalize(value)
	if err != nil {
		return nil, err
	}

	data, err := yaml.MarshalWithOptions(toMapSlice(tree), yaml.Indent(IndentSpaces), yaml.Flow(false))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize YAML: %w", format.ErrSerialize, err)
	}
	return data, nil
}

// Unmarshal decodes a YAML document into a generic value tree.
func Unmarshal(data []byte) (any, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", format.ErrParse, err)
	}

	tree, err := fromMapSlice(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", format.ErrParse, err)
	}
	return tree, nil
}

// toMapSlice converts ordered maps to yaml.MapSlice so the encoder keeps key order.
func toMapSlice(v any) any {
	if om := format.ToOrderedMapPtr(v); om != nil {
		result := make(yaml.MapSlice, 0, len(om.Keys()))
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			result = append(result, yaml.MapItem{Key: k, Value: toMapSlice(child)})
		}
		return result
	}
	if items, ok := v.([]any); ok {
		result := make([]any, len(items))
		for i, item := range items {
			result[i] = toMapSlice(item)
		}
		return result
	}
	if f, ok := v.(float64); ok {
		return yamlFloat(f)
	}
	return v
}

// yamlFloat writes a float so that it resolves back to a float: the
// mantissa always carries a '.', since "1e+21" alone loads as a string.
type yamlFloat float64

// MarshalYAML implements yaml.BytesMarshaler.
func (f yamlFloat) MarshalYAML() ([]byte, error) {
	return []byte(formatFloat(float64(f))), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		return mantissa + "e" + exponent
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// fromMapSlice converts decoded yaml.MapSlice values back to ordered maps
// and normalizes scalars (goccy yields uint64 for positive integers).
func fromMapSlice(v any) (any, error) {
	switch val := v.(type) {
	case yaml.MapSlice:
		result := format.NewMap()
		for _, item := range val {
			child, err := fromMapSlice(item.Value)
			if err != nil {
				return nil, err
			}
			result.Set(keyString(item.Key), child)
		}
		return result, nil
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			child, err := fromMapSlice(item)
			if err != nil {
				return nil, err
			}
			result[i] = child
		}
		return result, nil
	default:
		return format.Normalize(val)
	}
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case nil:
		return "null"
	default:
		return fmt.Sprint(k)
	}
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
