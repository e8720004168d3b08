package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirteen37/confio/internal/fileio"
	"github.com/thirteen37/confio/internal/format"
	"github.com/thirteen37/confio/internal/format/jsonl"
)

func TestRun_RespectsLimit(t *testing.T) {
	const limit = 2
	var running, peak atomic.Int32

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return nil
		}
	}

	require.NoError(t, Run(context.Background(), limit, tasks))
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestRun_AllTasksRunAndErrorsJoined(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	var ran atomic.Int32

	tasks := []Task{
		func(ctx context.Context) error { ran.Add(1); return errA },
		func(ctx context.Context) error { ran.Add(1); return nil },
		func(ctx context.Context) error { ran.Add(1); return errC },
	}

	err := Run(context.Background(), 1, tasks)
	assert.Equal(t, int32(3), ran.Load())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
	assert.Equal(t, "a failed\nc failed", err.Error())
}

func TestRun_Unbounded(t *testing.T) {
	var ran atomic.Int32
	tasks := make([]Task, 5)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error { ran.Add(1); return nil }
	}

	require.NoError(t, Run(context.Background(), 0, tasks))
	assert.Equal(t, int32(5), ran.Load())
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	tasks := []Task{
		func(ctx context.Context) error { ran.Add(1); return nil },
	}

	err := Run(ctx, 1, tasks)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ran.Load())
}

func TestRun_NoTasks(t *testing.T) {
	assert.NoError(t, Run(context.Background(), 3, nil))
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.yaml")
	require.NoError(t, os.WriteFile(src, []byte("name: app\nport: 8080\n"), 0644))

	pairs := []Pair{
		{Src: src, Dst: filepath.Join(dir, "out", "a.json")},
		{Src: src, Dst: filepath.Join(dir, "out", "a.toml")},
		{Src: src, Dst: filepath.Join(dir, "out", "a.xml")},
	}
	require.NoError(t, Convert(context.Background(), 2, pairs, format.DefaultSaveOptions()))

	want := map[string]any{"name": "app", "port": int64(8080)}
	for _, ext := range []string{"json", "toml"} {
		got, err := fileio.LoadFile(filepath.Join(dir, "out", "a."+ext))
		require.NoError(t, err)
		assert.Equal(t, want, format.Plain(got), ext)
	}

	got, err := fileio.LoadFile(filepath.Join(dir, "out", "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "app", "port": "8080"}, format.Plain(got))
}

func TestConvert_ExplicitHandlers(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"id": 1}, {"id": 2}]`), 0644))
	dst := filepath.Join(dir, "records.jsonl")

	pairs := []Pair{{Src: src, Dst: dst, DstHandler: jsonl.New()}}
	require.NoError(t, Convert(context.Background(), 1, pairs, format.DefaultSaveOptions()))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1}\n{\"id\":2}\n", string(data))
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"a": null}`), 0644))

	pairs := []Pair{
		{Src: filepath.Join(dir, "missing.json"), Dst: filepath.Join(dir, "x.yaml")},
		{Src: good, Dst: filepath.Join(dir, "out.csv")},
		{Src: good, Dst: filepath.Join(dir, "out.toml")},
		{Src: good, Dst: filepath.Join(dir, "out.yaml")},
	}

	err := Convert(context.Background(), 0, pairs, format.DefaultSaveOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, format.ErrUnsupportedExtension)
	assert.ErrorIs(t, err, format.ErrSerialize)

	_, statErr := os.Stat(filepath.Join(dir, "out.yaml"))
	assert.NoError(t, statErr, "successful conversions still complete")
	_, statErr = os.Stat(filepath.Join(dir, "out.toml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertOne_CancelledBeforeSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"a": 1}`), 0644))
	dst := filepath.Join(dir, "out.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := convertOne(ctx, Pair{Src: src, Dst: dst}, format.DefaultSaveOptions())
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "destination must not be written after cancellation")
}
