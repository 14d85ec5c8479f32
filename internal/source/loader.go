// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
)

// FindFiles returns the absolute paths of all source files under dir,
// sorted, as selected by the tree's Filter.
func FindFiles(dir string) ([]string, error) {
	filter, err := NewFilter(dir)
	if err != nil {
		return nil, err
	}
	return filter.Files()
}

// LoadDir scans every source file under dir through cache using a bounded
// worker pool and returns the files ordered by path, so registration order
// does not depend on scheduling. If concurrency <= 0 it defaults to
// runtime.NumCPU().
//
// A file that cannot be read fails the whole load; declarations that
// cannot be parsed only add diagnostics to their file.
func LoadDir(ctx context.Context, dir string, concurrency int, cache *Cache) ([]*File, error) {
	paths, err := FindFiles(dir)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, paths, concurrency, cache)
}

// LoadFiles scans paths through cache like LoadDir and returns the files
// in the order of paths.
func LoadFiles(ctx context.Context, paths []string, concurrency int, cache *Cache) ([]*File, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if len(paths) == 0 {
		return nil, nil
	}

	type loadResult struct {
		idx  int
		file *File
		err  error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- loadResult{idx: idx, err: err}
					continue
				}
				f, loadErr := cache.Load(paths[idx])
				results <- loadResult{idx: idx, file: f, err: loadErr}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	files := make([]*File, len(paths))
	var errs error
	for lr := range results {
		if lr.err != nil {
			errs = errors.CombineErrors(errs, lr.err)
			continue
		}
		files[lr.idx] = lr.file
	}
	if errs != nil {
		return nil, errs
	}
	return files, nil
}
