package format

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/iancoleman/orderedmap"
)

// NewMap returns an empty mapping that serializes without HTML escaping.
func NewMap() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	return m
}

// ToOrderedMapPtr converts both value and pointer types of OrderedMap to a pointer.
// Returns nil if the value is not an OrderedMap.
func ToOrderedMapPtr(v any) *orderedmap.OrderedMap {
	switch val := v.(type) {
	case *orderedmap.OrderedMap:
		return val
	case orderedmap.OrderedMap:
		return &val
	default:
		return nil
	}
}

// ShapeOf names the top-level shape of a generic value.
func ShapeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *orderedmap.OrderedMap, orderedmap.OrderedMap, map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map:
		return "mapping"
	case reflect.Slice, reflect.Array:
		return "sequence"
	}
	return "scalar"
}

// Normalize converts v into the canonical value tree: *orderedmap.OrderedMap
// for mappings, []any for sequences, int64, float64, string, bool, time.Time
// and nil for scalars. Plain Go maps have their keys sorted.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *orderedmap.OrderedMap:
		if val == nil {
			return nil, nil
		}
		return normalizeOrdered(val)
	case orderedmap.OrderedMap:
		return normalizeOrdered(&val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		result := NewMap()
		for _, k := range keys {
			child, err := Normalize(val[k])
			if err != nil {
				return nil, err
			}
			result.Set(k, child)
		}
		return result, nil
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			child, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			result[i] = child
		}
		return result, nil
	case string, bool, int64, float64, time.Time:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrSerialize, val)
		}
		return f, nil
	}
	return normalizeReflect(reflect.ValueOf(v))
}

func normalizeOrdered(om *orderedmap.OrderedMap) (any, error) {
	result := NewMap()
	for _, k := range om.Keys() {
		child, _ := om.Get(k)
		normalized, err := Normalize(child)
		if err != nil {
			return nil, err
		}
		result.Set(k, normalized)
	}
	return result, nil
}

// normalizeReflect handles the remaining numeric kinds, typed maps and slices.
func normalizeReflect(rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		result := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			result[i] = child
		}
		return result, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: mapping keys must be strings, got %s", ErrSerialize, rv.Type().Key())
		}
		plain := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			plain[iter.Key().String()] = iter.Value().Interface()
		}
		return Normalize(plain)
	}
	return nil, fmt.Errorf("%w: unsupported value type %T", ErrSerialize, rv.Interface())
}

// Plain recursively converts ordered maps to map[string]any.
// Useful for comparisons and for encoders that only understand plain maps.
func Plain(v any) any {
	if om := ToOrderedMapPtr(v); om != nil {
		result := make(map[string]any, len(om.Keys()))
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			result[k] = Plain(child)
		}
		return result
	}
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = Plain(item)
		}
		return result
	case []map[string]any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = Plain(item)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = Plain(item)
		}
		return result
	default:
		return val
	}
}
