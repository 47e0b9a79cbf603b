package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Watch is the action of watch command. All stylesheets under source
// directory are compiled first, after that changed and new ones are
// compiled as they appear until program is interrupted.
func Watch(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r, src, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}
	// results are rewritten on every change
	r.env.Overwrite = true

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("unable to access source: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("source must be a directory (%s)", src)
	}
	if isInside(src, r.dst) {
		return fmt.Errorf("destination (%s) must not be inside watched directory (%s)", r.dst, src)
	}

	r.log.Info("Initial compilation", zap.String("source", src), zap.String("destination", r.dst), zap.Stringer("run", r.env.RunID))
	if err := r.processDir(ctx, src); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("unable to process directory: %w", err)
	}
	return r.watch(ctx, src, r.env.Cfg.Processing.WatchDelay)
}

// isInside reports whether path is dir or is located under it.
func isInside(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// watch compiles stylesheets under dir when they are created or written.
// Events are collected until there were none for delay, then all changed
// stylesheets are compiled together. Returns when ctx is done.
func (r *runner) watch(ctx context.Context, dir string, delay time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer w.Close()

	pending := make(map[string]struct{})
	enqueue := func(path string) {
		if r.env.Matcher.Match(path) {
			pending[path] = struct{}{}
		}
	}

	if err := r.addTree(w, dir, nil); err != nil {
		return err
	}
	r.log.Info("Watching for changes", zap.String("dir", dir), zap.Duration("delay", delay))

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Watching stopped", zap.Int64("processed", r.processed.Load()), zap.Int64("failed", r.failed.Load()))
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				// new directory, files may already be there
				if ev.Has(fsnotify.Create) {
					if err := r.addTree(w, ev.Name, enqueue); err != nil {
						r.log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			} else {
				enqueue(ev.Name)
			}
			if len(pending) > 0 {
				timer.Reset(delay)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			r.log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			sheets := make([]*stylesheet, 0, len(pending))
			for path := range pending {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					r.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
					continue
				}
				sheets = append(sheets, r.fileStylesheet(path, rel))
			}
			clear(pending)

			sortStylesheets(sheets)
			if err := r.compileAll(ctx, sheets); err != nil && ctx.Err() == nil {
				r.log.Error("Unable to process changes", zap.Error(err))
			}
		}
	}
}

// addTree adds dir and all its subdirectories to the watcher, fn (when not
// nil) is called for every regular file found.
func (r *runner) addTree(w *fsnotify.Watcher, dir string, fn func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("unable to watch directory (%s): %w", path, err)
			}
			return nil
		}
		if fn != nil && d.Type().IsRegular() {
			fn(path)
		}
		return nil
	})
}
