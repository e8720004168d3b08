// Package batch runs file operations concurrently with bounded parallelism.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/thirteen37/confio/internal/fileio"
	"github.com/thirteen37/confio/internal/format"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of work run by Run.
type Task func(ctx context.Context) error

// Run executes tasks with at most limit running at once; limit <= 0 means
// no bound. Every task runs even if others fail. The returned error joins
// each task's error in task order. Tasks not yet started when ctx is
// cancelled report ctx.Err().
func Run(ctx context.Context, limit int, tasks []Task) error {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Pair names a source file and the destination it is converted to.
// A nil handler is resolved from the file extension.
type Pair struct {
	Src        string
	Dst        string
	SrcHandler format.Handler
	DstHandler format.Handler
}

// Convert loads each source and saves it to its destination, choosing
// formats from the file extensions. A pair whose context is cancelled
// after its source was read is not written.
func Convert(ctx context.Context, limit int, pairs []Pair, opts format.SaveOptions) error {
	tasks := make([]Task, len(pairs))
	for i, p := range pairs {
		p := p
		tasks[i] = func(ctx context.Context) error {
			return convertOne(ctx, p, opts)
		}
	}
	return Run(ctx, limit, tasks)
}

func convertOne(ctx context.Context, p Pair, opts format.SaveOptions) error {
	// Resolve both handlers first so an unsupported destination fails
	// before the source is read.
	src, err := handlerFor(p.SrcHandler, p.Src)
	if err != nil {
		return fmt.Errorf("convert %s: %w", p.Src, err)
	}
	dst, err := handlerFor(p.DstHandler, p.Dst)
	if err != nil {
		return fmt.Errorf("convert %s: %w", p.Src, err)
	}

	value, err := src.Load(p.Src)
	if err != nil {
		return fmt.Errorf("convert %s: %w", p.Src, err)
	}
	// Cancelled while loading: skip the write.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("convert %s: %w", p.Src, err)
	}
	if err := dst.Save(value, p.Dst, opts); err != nil {
		return fmt.Errorf("convert %s: %w", p.Src, err)
	}
	return nil
}

func handlerFor(h format.Handler, path string) (format.Handler, error) {
	if h != nil {
		return h, nil
	}
	return fileio.FromPath(path)
}
