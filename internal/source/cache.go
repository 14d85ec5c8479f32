// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/logging"
)

type cached struct {
	sum  uint64 // xxhash of the source the file was scanned from
	file *File
}

// Cache holds scanned files by path. Every Load reads the file; the
// scanned result is reused only while the content is unchanged.
// A Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	files map[string]cached
	log   *zap.Logger
}

// NewCache returns an empty cache. A nil logger is replaced by a no-op one.
func NewCache(log *zap.Logger) *Cache {
	return &Cache{files: make(map[string]cached), log: logging.OrNop(log)}
}

// Load returns the scanned file at path, scanning it again when its
// content differs from the cached scan. The returned File is shared and
// must not be modified.
func (c *Cache) Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	sum := xxhash.Sum64(src)

	c.mu.Lock()
	hit, ok := c.files[path]
	c.mu.Unlock()
	if ok && hit.sum == sum {
		return hit.file, nil
	}

	f := Parse(path, src)
	c.log.Debug("scanned source file",
		zap.String("path", path),
		zap.Int("declarations", len(f.Decls)),
		zap.Int("diagnostics", len(f.Diagnostics)))

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have scanned the same content meanwhile; keep
	// the first result so callers share one File.
	if existing, ok := c.files[path]; ok && existing.sum == sum {
		return existing.file, nil
	}
	c.files[path] = cached{sum: sum, file: f}
	return f, nil
}

// Invalidate drops the entry for path and reports whether there was one.
func (c *Cache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.files[path]
	delete(c.files, path)
	return ok
}

// Retain drops every entry whose path is not in paths and returns how
// many were dropped.
func (c *Cache) Retain(paths []string) int {
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[p] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for p := range c.files {
		if !keep[p] {
			delete(c.files, p)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}
