// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reprocesses description files as they are created or written.
type Watcher struct {
	batch *Batch
	fs    *fsnotify.Watcher
	out   io.Writer
}

// Watcher starts watching the pattern's base directory and every directory
// below it. Files are not processed until Run is called.
func (b *Batch) Watcher(w io.Writer) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := os.MkdirAll(b.base, 0o755); err != nil {
		fw.Close()
		return nil, fmt.Errorf("creating %s: %w", b.base, err)
	}
	watcher := &Watcher{batch: b, fs: fw, out: w}
	if err := watcher.addTree(b.base); err != nil {
		fw.Close()
		return nil, err
	}
	return watcher, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.batch.logger.Debug("Watching directory", zap.String("path", path))
		return nil
	})
}

// Run handles events until ctx is cancelled and then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	w.batch.logger.Info("Watching for descriptions", zap.String("pattern", w.batch.pattern))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.batch.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				w.batch.logger.Warn("Cannot watch directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
		return
	}
	if match, _ := doublestar.PathMatch(w.batch.pattern, filepath.Clean(event.Name)); !match {
		return
	}
	w.batch.logger.Debug("Description changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	w.batch.ProcessFile(ctx, event.Name, w.out)
}
