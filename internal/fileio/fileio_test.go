package fileio

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/format/json"
	"github.com/thirteen37/confio/internal/format/toml"
	"github.com/thirteen37/confio/internal/format/xml"
	"github.com/thirteen37/confio/internal/format/yaml"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    format.Handler
		wantErr error
	}{
		{path: "a.json", want: &json.Handler{}},
		{path: "a.yaml", want: &yaml.Handler{}},
		{path: "a.yml", want: &yaml.Handler{}},
		{path: "a.toml", want: &toml.Handler{}},
		{path: "a.xml", want: xml.New()},
		{path: "dir.d/A.JSON", want: &json.Handler{}},
		{path: "settings.Yml", want: &yaml.Handler{}},
		{path: "archive.tar.toml", want: &toml.Handler{}},
		{path: "a", wantErr: format.ErrNoExtension},
		{path: "dir.d/noext", wantErr: format.ErrNoExtension},
		{path: ".json", wantErr: format.ErrNoExtension},
		{path: "a.txt", wantErr: format.ErrUnsupportedExtension},
		{path: "a.jsonl", wantErr: format.ErrUnsupportedExtension},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FromPath(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromPath_ErrorMessages(t *testing.T) {
	_, err := FromPath("a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".txt")
	assert.Contains(t, err.Error(), "json, yaml, yml, toml, xml")

	_, err = FromPath("plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain")
}

func TestCreate(t *testing.T) {
	for _, f := range SupportedFormats() {
		t.Run(string(f), func(t *testing.T) {
			h, err := Create(f)
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}

	_, err := Create("txt")
	assert.ErrorIs(t, err, format.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "json, yaml, toml, xml")

	_, err = Create("JSON")
	assert.ErrorIs(t, err, format.ErrUnsupportedFormat, "tags are case-sensitive")
}

func TestCreate_ReturnsFreshHandlers(t *testing.T) {
	first, err := Create(format.XML)
	require.NoError(t, err)
	second, err := Create(format.XML)
	require.NoError(t, err)

	first.(*xml.Handler).RootTag = "changed"
	assert.Equal(t, xml.DefaultRootTag, second.(*xml.Handler).RootTag)
}

func TestSupportedTables(t *testing.T) {
	assert.Equal(t, []format.Format{format.JSON, format.YAML, format.TOML, format.XML}, SupportedFormats())
	assert.Equal(t, []string{"json", "yaml", "yml", "toml", "xml"}, SupportedExtensions())

	// Callers get copies.
	exts := SupportedExtensions()
	exts[0] = "csv"
	assert.Equal(t, "json", SupportedExtensions()[0])
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	inner := format.NewMap()
	inner.Set("host", "localhost")
	inner.Set("note", "naïve ☃")
	value := format.NewMap()
	value.Set("name", "app")
	value.Set("server", inner)

	for _, ext := range []string{"json", "yaml", "yml", "toml", "xml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg."+ext)
			require.NoError(t, SaveFile(value, path, format.DefaultSaveOptions()))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, format.Plain(value), format.Plain(got))
		})
	}
}

func TestSaveLoad_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.csv")

	_, loadErr := LoadFile(path)
	saveErr := SaveFile(map[string]any{"a": 1}, path, format.DefaultSaveOptions())

	assert.ErrorIs(t, loadErr, format.ErrUnsupportedExtension)
	assert.ErrorIs(t, saveErr, format.ErrUnsupportedExtension)
	assert.Equal(t, loadErr.Error(), saveErr.Error())

	_, err := os.Stat(filepath.Join(dir, "sub"))
	assert.True(t, os.IsNotExist(err), "resolution errors must happen before any I/O")
}

func TestSaveFile_Parents(t *testing.T) {
	base := t.TempDir()
	deep := filepath.Join(base, "x", "y", "z", "cfg.json")

	err := SaveFile(map[string]any{"a": 1}, deep, format.SaveOptions{Parents: false})
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, statErr := os.Stat(filepath.Join(base, "x"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be created when Parents is false")

	require.NoError(t, SaveFile(map[string]any{"a": 1}, deep, format.DefaultSaveOptions()))
	// Idempotent on an existing tree.
	require.NoError(t, SaveFile(map[string]any{"a": 2}, deep, format.DefaultSaveOptions()))

	got, err := LoadFile(deep)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(2)}, format.Plain(got))
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, format.ErrParse)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestLoadFile_OrderPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("b: 1\na: 2\nc: 3\n"), 0644))

	got, err := LoadFile(path)
	require.NoError(t, err)

	om, ok := got.(*orderedmap.OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a", "c"}, om.Keys())
}

func TestSaveFile_NullBearingValue(t *testing.T) {
	dir := t.TempDir()
	value := map[string]any{"a": nil, "b": map[string]any{"c": nil}}

	err := SaveFile(value, filepath.Join(dir, "cfg.toml"), format.DefaultSaveOptions())
	assert.ErrorIs(t, err, format.ErrSerialize)
	_, statErr := os.Stat(filepath.Join(dir, "cfg.toml"))
	assert.True(t, os.IsNotExist(statErr))

	for _, ext := range []string{"json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "cfg."+ext)
			require.NoError(t, SaveFile(value, path, format.DefaultSaveOptions()))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, value, format.Plain(got))
		})
	}
}
