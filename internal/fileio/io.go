package fileio

import "github.com/thirteen37/confio/internal/format"

// LoadFile loads path with the handler selected by its extension.
func LoadFile(path string) (any, error) {
	handler, err := FromPath(path)
	if err != nil {
		return nil, err
	}
	return handler.Load(path)
}

// SaveFile saves value to path with the handler selected by its extension.
// Concurrent saves to the same path are not coordinated; the last writer wins.
func SaveFile(value any, path string, opts format.SaveOptions) error {
	handler, err := FromPath(path)
	if err != nil {
		return err
	}
	return handler.Save(value, path, opts)
}
