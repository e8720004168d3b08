// Package json provides the JSON format handler.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/thirteen37/confio/internal/format"
)

// Indent is the indentation used when writing JSON files.
const Indent = "    "

// Handler implements format.Handler for JSON files.
type Handler struct{}

// New creates a new JSON handler.
func New() *Handler {
	return &Handler{}
}

// Load reads a JSON file. Objects load as *orderedmap.OrderedMap in
// document order, integers as int64 and other numbers as float64.
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

// Save writes value as indented JSON, keeping key order and non-ASCII text as is.
func (h *Handler) Save(value any, path string, opts format.SaveOptions) error {
	data, err := Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return format.WriteFile(path, data, opts)
}

// Marshal encodes value as 4-space indented JSON with a trailing newline.
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, value, Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes value as one JSON document followed by a newline. An empty
// indent produces compact single-line output. HTML characters are not
// escaped and whole floats keep a ".0" suffix so they reload as floats.
func Encode(w io.Writer, value any, indent string) error {
	tree, err := format.Normalize(value)
	if err != nil {
		return err
	}
	tree, err = numbersToJSON(tree)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("%w: failed to serialize JSON: %w", format.ErrSerialize, err)
	}
	return nil
}

// numbersToJSON replaces float64 leaves with json.Number literals that
// always carry a fraction or exponent.
func numbersToJSON(v any) (any, error) {
	if om := format.ToOrderedMapPtr(v); om != nil {
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			converted, err := numbersToJSON(child)
			if err != nil {
				return nil, err
			}
			om.Set(k, converted)
		}
		return om, nil
	}

	switch val := v.(type) {
	case []any:
		for i, item := range val {
			converted, err := numbersToJSON(item)
			if err != nil {
				return nil, err
			}
			val[i] = converted
		}
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("%w: JSON cannot represent %v", format.ErrSerialize, val)
		}
		return json.Number(formatFloat(val)), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	default:
		return val, nil
	}
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	fmtByte := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		fmtByte = 'e'
	}
	s := strconv.FormatFloat(f, fmtByte, -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Unmarshal decodes a single JSON document into a generic value tree.
func Unmarshal(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	tree, err := decodeValue(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", format.ErrParse, err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse JSON: unexpected data after top-level value", format.ErrParse)
	}
	return tree, nil
}

func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch tok := token.(type) {
	case json.Delim:
		switch tok {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", tok)
	case json.Number:
		return format.Normalize(tok)
	default:
		// string, bool or nil
		return tok, nil
	}
}

func decodeObject(decoder *json.Decoder) (any, error) {
	result := format.NewMap()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", token)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		result.Set(key, value)
	}

	// closing '}'
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeArray(decoder *json.Decoder) (any, error) {
	result := []any{}
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}

	// closing ']'
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return result, nil
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
