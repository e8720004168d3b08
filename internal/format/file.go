package format

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrPathIsDirectory is returned when a load path points to a directory.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// ReadFile reads the whole file at path.
// Missing files surface as errors matching fs.ErrNotExist.
func ReadFile(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)

	stat, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat file %q: %w", cleanPath, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", cleanPath, ErrPathIsDirectory)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- caller chooses the path
	if err != nil {
		return nil, fmt.Errorf("reading file %q: %w", cleanPath, err)
	}
	return data, nil
}

// PrepareParent makes sure the directory that will hold path exists,
// following opts.
func PrepareParent(path string, opts SaveOptions) error {
	dir := filepath.Dir(filepath.Clean(path))

	if !opts.Parents {
		stat, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("parent directory %q: %w", dir, err)
		}
		if !stat.IsDir() {
			return fmt.Errorf("parent %q is not a directory", dir)
		}
		return nil
	}

	if !opts.ExistOK {
		if _, err := os.Stat(dir); err == nil {
			return fmt.Errorf("create parent directory %q: %w", dir, fs.ErrExist)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directory %q: %w", dir, err)
	}
	return nil
}

// WriteFile prepares the parent directory and overwrites path with data.
// The write is not atomic: a failure part way may leave a truncated file.
func WriteFile(path string, data []byte, opts SaveOptions) error {
	if err := PrepareParent(path, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file %q: %w", path, err)
	}
	return nil
}
