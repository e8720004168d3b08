package format

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"ordered map", NewMap(), "mapping"},
		{"plain map", map[string]any{}, "mapping"},
		{"typed map", map[string]int{}, "mapping"},
		{"sequence", []any{}, "sequence"},
		{"typed slice", []string{"a"}, "sequence"},
		{"string", "x", "scalar"},
		{"int", int64(1), "scalar"},
		{"bool", true, "scalar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShapeOf(tt.value))
		})
	}
}

func TestNormalize_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"int", 7, int64(7)},
		{"int8", int8(-3), int64(-3)},
		{"uint64", uint64(42), int64(42)},
		{"huge uint64", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.5), 0.5},
		{"json integer", json.Number("12"), int64(12)},
		{"json float", json.Number("1.25"), 1.25},
		{"string", "s", "s"},
		{"bool", false, false},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_PlainMapKeysSorted(t *testing.T) {
	got, err := Normalize(map[string]any{"b": 1, "a": map[string]int{"y": 2, "x": 1}})
	require.NoError(t, err)

	om, ok := got.(*orderedmap.OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, om.Keys())

	inner, _ := om.Get("a")
	assert.Equal(t, []string{"x", "y"}, inner.(*orderedmap.OrderedMap).Keys())
}

func TestNormalize_KeepsOrderedMapOrder(t *testing.T) {
	om := orderedmap.New()
	om.Set("z", 1)
	om.Set("a", []string{"x"})

	got, err := Normalize(*om)
	require.NoError(t, err)

	result := got.(*orderedmap.OrderedMap)
	assert.Equal(t, []string{"z", "a"}, result.Keys())
	z, _ := result.Get("z")
	assert.Equal(t, int64(1), z)
	a, _ := result.Get("a")
	assert.Equal(t, []any{"x"}, a)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"non-string keys", map[int]string{1: "a"}},
		{"channel", make(chan int)},
		{"bad json number", json.Number("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.value)
			assert.True(t, errors.Is(err, ErrSerialize), "got %v", err)
		})
	}
}

func TestPlain(t *testing.T) {
	inner := NewMap()
	inner.Set("k", "v")
	om := NewMap()
	om.Set("inner", inner)
	om.Set("list", []any{inner, int64(1)})

	want := map[string]any{
		"inner": map[string]any{"k": "v"},
		"list":  []any{map[string]any{"k": "v"}, int64(1)},
	}
	assert.Equal(t, want, Plain(om))
}

func TestToOrderedMapPtr(t *testing.T) {
	om := NewMap()
	assert.Same(t, om, ToOrderedMapPtr(om))
	assert.NotNil(t, ToOrderedMapPtr(*om))
	assert.Nil(t, ToOrderedMapPtr(map[string]any{}))
	assert.Nil(t, ToOrderedMapPtr("x"))
}
