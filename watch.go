// SPDX-License-Identifier: MIT

package diaglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/corefold/diaglog/metrics"
	"github.com/corefold/diaglog/zlog"
)

// FilterWatcher hot-reloads the directive filter from a file. A change is
// applied atomically: an unparseable file is rejected and the previous
// filter stays active.
type FilterWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	done    chan struct{}

	mu        sync.Mutex
	listeners []chan<- string
}

// WatchFilterFile applies the filter file at path (when it exists) and
// starts watching it for changes. The parent directory is watched rather
// than the file so editor rename-and-replace saves are seen.
func WatchFilterFile(path string) (*FilterWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("diaglog: filter file: %w", err)
	}

	w := &FilterWatcher{
		path:   abs,
		logger: zlog.WithComponent("filter-watch"),
		done:   make(chan struct{}),
	}

	if _, err := os.Stat(abs); err == nil {
		if err := w.reload(); err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("diaglog: filter watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("diaglog: watch %s: %w", filepath.Dir(abs), err)
	}
	w.watcher = fsw

	go w.loop()

	w.logger.Info().
		Str(zlog.FieldEvent, "filter.watch_started").
		Str(zlog.FieldPath, abs).
		Msg("watching filter file")
	return w, nil
}

// Subscribe registers a channel notified with the filter string after every
// applied reload. Sends are non-blocking; a full channel misses the update.
func (w *FilterWatcher) Subscribe(ch chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, ch)
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *FilterWatcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *FilterWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.reload(); err != nil {
				w.logger.Error().
					Err(err).
					Str(zlog.FieldEvent, "filter.reload_rejected").
					Msg("keeping previous filter")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str(zlog.FieldEvent, "filter.watch_error").
				Msg("filter watcher error")
		}
	}
}

func (w *FilterWatcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		metrics.RecordFilterReload("rejected")
		return fmt.Errorf("read filter file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		// Editors truncate before rewriting. An empty file is transient
		// noise, not a request to reset the filter.
		metrics.RecordFilterReload("rejected")
		return fmt.Errorf("filter file %s is empty", w.path)
	}

	old := zlog.CurrentFilter().String()
	f, err := zlog.ParseFilter(content)
	if err != nil {
		metrics.RecordFilterReload("rejected")
		return err
	}
	zlog.SetFilter(f)
	metrics.RecordFilterReload("applied")

	w.logger.Info().
		Str(zlog.FieldEvent, "filter.reloaded").
		Str(zlog.FieldOldFilter, old).
		Str(zlog.FieldNewFilter, f.String()).
		Msg("directive filter applied")

	w.notify(f.String())
	return nil
}

func (w *FilterWatcher) notify(filter string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.listeners {
		select {
		case ch <- filter:
		default:
		}
	}
}
