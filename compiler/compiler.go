// Package compiler ties the loading of schema definitions to the generation
// of descriptor packages.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/typedsql/compiler/gen"
	"github.com/syssam/typedsql/compiler/load"
)

// Generate loads the YAML definition at path and generates its package.
// The package name declared by the definition is used unless opts set one.
// It returns the written files.
func Generate(ctx context.Context, path string, opts ...gen.Option) ([]string, error) {
	def, err := load.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Package != "" {
		opts = append([]gen.Option{gen.WithPackage(def.Package)}, opts...)
	}
	g, err := gen.NewGenerator(s, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Generate(ctx); err != nil {
		return nil, err
	}
	return g.Files(), nil
}

// WatchOption configures Watch.
type WatchOption func(*watcher)

type watcher struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WithDebounce sets how long Watch waits for more changes before running.
// Defaults to 100ms.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger receiving the failures of fn.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *watcher) {
		w.logger = l
	}
}

// Watch runs fn, then runs it again each time the file at path is written,
// created or replaced, until ctx is done. Failures of fn are logged and do
// not stop the watch. It returns nil when ctx is canceled.
//
// Example:
//
//	err := compiler.Watch(ctx, "schema.yaml", func(ctx context.Context) error {
//	    _, err := compiler.Generate(ctx, "schema.yaml", gen.WithTarget("./db"))
//	    return err
//	})
func Watch(ctx context.Context, path string, fn func(context.Context) error, opts ...WatchOption) error {
	w := &watcher{debounce: 100 * time.Millisecond, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	// The directory is watched: a file replaced by a rename is a new inode.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.run(ctx, path, fn)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", path, "error", err)
		case <-timer.C:
			w.run(ctx, path, fn)
		}
	}
}

func (w *watcher) run(ctx context.Context, path string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		w.logger.Error("regeneration failed", "path", path, "error", err)
		return
	}
	w.logger.Info("regenerated", "path", path)
}
