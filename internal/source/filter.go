// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Extension is the suffix of the files that make up a source tree.
const Extension = ".jl"

// skipDirs contains directory names that are never part of a source tree.
// Hidden directories are skipped as well.
var skipDirs = map[string]bool{
	"node_modules": true,
	"deps":         true,
	"build":        true,
}

// Filter decides which paths below a root belong to the source tree. It
// applies skipDirs, hidden directories and every .gitignore of the tree,
// with full gitignore syntax (negation, "**", anchored patterns).
type Filter struct {
	root    string
	matcher gitignore.Matcher
}

// NewFilter reads the ignore rules of the tree at root.
func NewFilter(root string) (*Filter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving directory")
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrap(err, "stat directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", absRoot)
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(absRoot), nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading .gitignore files")
	}
	return &Filter{root: absRoot, matcher: gitignore.NewMatcher(patterns)}, nil
}

// Root returns the absolute root the filter applies to.
func (f *Filter) Root() string { return f.root }

// SkipDir reports whether the directory at path and everything below it
// is outside the source tree. The root itself is never skipped.
func (f *Filter) SkipDir(path string) bool {
	parts, ok := f.split(path)
	if !ok {
		return true
	}
	if len(parts) == 0 {
		return false
	}
	for i := range parts {
		if skippedName(parts[i]) || f.matcher.Match(parts[:i+1], true) {
			return true
		}
	}
	return false
}

// Includes reports whether the file at path is a source file of the tree.
// The file need not exist.
func (f *Filter) Includes(path string) bool {
	if !strings.HasSuffix(path, Extension) {
		return false
	}
	parts, ok := f.split(path)
	if !ok || len(parts) == 0 {
		return false
	}
	dirs := parts[:len(parts)-1]
	for i := range dirs {
		if skippedName(dirs[i]) || f.matcher.Match(dirs[:i+1], true) {
			return false
		}
	}
	return !f.matcher.Match(parts, false)
}

// Files returns the absolute paths of all source files, sorted.
func (f *Filter) Files() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if path != f.root && f.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if f.Includes(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking directory")
	}
	sort.Strings(paths)
	return paths, nil
}

// split returns the components of path relative to the root, or false
// when path lies outside it.
func (f *Filter) split(path string) ([]string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.root, path)
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return nil, false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return nil, true
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, false
	}
	return strings.Split(rel, "/"), true
}

func skippedName(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".")
}
