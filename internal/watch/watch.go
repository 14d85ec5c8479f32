// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch reports changed Julia source files under a directory tree,
// batching bursts of file system events.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/logging"
	"github.com/petar-djukic/go-jldoc/internal/source"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the sorted paths that changed during one quiet
// period. Removed files are included; the callback decides what a missing
// file means.
type ChangeFunc func(ctx context.Context, paths []string)

// Filter selects the directories to watch and the files to report.
// *source.Filter satisfies it.
type Filter interface {
	SkipDir(path string) bool
	Includes(path string) bool
}

// Watcher watches a directory tree for source file changes.
type Watcher struct {
	root     string
	filter   Filter
	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange ChangeFunc
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// New starts watching root and every directory below it that filter does
// not skip. A nil filter reads the ignore rules of root. Events are
// delivered once Run is called.
func New(root string, filter Filter, debounce time.Duration, onChange ChangeFunc, log *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving watch root")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "stat watch root")
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", root)
	}
	if filter == nil {
		sf, err := source.NewFilter(root)
		if err != nil {
			return nil, err
		}
		filter = sf
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	w := &Watcher{
		root:     root,
		filter:   filter,
		fs:       fw,
		debounce: debounce,
		onChange: onChange,
		log:      logging.OrNop(log),
		pending:  make(map[string]bool),
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.filter.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

// Run delivers batched changes until ctx is done, then stops watching.
// Pending changes that have not been delivered are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
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
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.filter.SkipDir(event.Name) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("cannot watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !w.filter.Includes(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debug("source changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	w.schedule(ctx, event.Name)
}

// schedule records path and restarts the quiet period.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(paths)
	w.onChange(ctx, paths)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	if err := w.fs.Close(); err != nil {
		w.log.Warn("closing watcher", zap.Error(err))
	}
}
