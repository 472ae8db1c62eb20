package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchImport sends a trigger whenever the import CSV is written, created,
// renamed or removed. The parent directory is watched rather than the file
// so editors that replace the file atomically are still seen. Triggers
// coalesce: if a run is already pending, further events are dropped.
func watchImport(ctx context.Context, path string, triggers chan<- string, logger *slog.Logger) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !relevant(ev) {
					continue
				}
				logger.Debug("import csv changed", "path", ev.Name, "op", ev.Op.String())
				select {
				case triggers <- "import_csv_changed":
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("import csv watch error", "error", err)
			}
		}
	}()

	logger.Info("watching import csv", "path", path)
	return w, nil
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
