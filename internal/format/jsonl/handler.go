// Package jsonl provides the JSON-Lines handler: one JSON object per line.
//
// JSON-Lines is not selected by file extension; callers use this package
// directly.
package jsonl

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/thirteen37/confio/internal/format"
	jsonfmt "github.com/thirteen37/confio/internal/format/json"
)

// maxLineSize bounds a single record.
const maxLineSize = 64 * 1024 * 1024

// Handler implements format.Handler for JSON-Lines files.
type Handler struct{}

// New creates a new JSON-Lines handler.
func New() *Handler {
	return &Handler{}
}

// Load reads a JSON-Lines file and returns a []any of mappings.
// Blank lines are skipped.
func (h *Handler) Load(path string) (any, error) {
	data, err := format.ReadFile(path)
	if err != nil {
		return nil, err
	}

	records, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Save writes a sequence of mappings, one compact JSON object per line.
func (h *Handler) Save(value any, path string, opts format.SaveOptions) error {
	data, err := Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return format.WriteFile(path, data, opts)
}

// Unmarshal decodes newline-delimited JSON objects.
func Unmarshal(data []byte) ([]any, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	records := []any{}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		record, err := jsonfmt.Unmarshal(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if format.ToOrderedMapPtr(record) == nil {
			return nil, fmt.Errorf("%w: line %d: expected a JSON object, got %s", format.ErrParse, lineNum, format.ShapeOf(record))
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", format.ErrParse, lineNum+1, err)
	}
	return records, nil
}

// Marshal encodes a sequence of mappings as JSON-Lines.
func Marshal(value any) ([]byte, error) {
	tree, err := format.Normalize(value)
	if err != nil {
		return nil, err
	}
	records, ok := tree.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: JSON-Lines data must be a sequence, got %s", format.ErrSerialize, format.ShapeOf(tree))
	}

	var buf bytes.Buffer
	for i, record := range records {
		if format.ToOrderedMapPtr(record) == nil {
			return nil, fmt.Errorf("%w: record %d must be a mapping, got %s", format.ErrSerialize, i, format.ShapeOf(record))
		}
		// Encode terminates each record with a newline.
		if err := jsonfmt.Encode(&buf, record, ""); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
