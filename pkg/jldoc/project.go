// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package jldoc

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/logging"
	"github.com/petar-djukic/go-jldoc/internal/registry"
	"github.com/petar-djukic/go-jldoc/internal/sigparse"
	"github.com/petar-djukic/go-jldoc/internal/source"
	"github.com/petar-djukic/go-jldoc/internal/store"
	"github.com/petar-djukic/go-jldoc/internal/watch"
	"github.com/petar-djukic/go-jldoc/internal/xref"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Project is the declaration index of one source tree.
//
// The registry has a single writer: Build, Rebuild, Restore and the
// watcher's rebuilds take the write lock, queries take the read lock.
type Project struct {
	cfg   Config
	log   *zap.Logger
	cache *source.Cache
	store *store.Store // nil without a database

	mu      sync.RWMutex
	filter  *source.Filter // Ignore rules read by the last Build
	reg     *registry.Registry
	files   map[string]*source.File // By document name
	buildID string
}

// New validates the config, opens the snapshot database if one is
// configured, and returns an empty Project. It does not scan sources; call
// Build or Restore.
func New(cfg Config) (*Project, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid config"), ErrInvalidConfig)
	}
	applyDefaults(&cfg)

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving root")
	}
	cfg.Root = root
	filter, err := source.NewFilter(root)
	if err != nil {
		return nil, err
	}

	p := &Project{
		cfg:    cfg,
		log:    cfg.Logger,
		cache:  source.NewCache(cfg.Logger),
		filter: filter,
		reg:    registry.New(),
		files:  make(map[string]*source.File),
	}
	if cfg.DBPath != "" {
		if p.store, err = store.Open(cfg.DBPath, cfg.Logger); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.Root == "" {
		return errors.New("Root is required")
	}
	if info, err := os.Stat(cfg.Root); err != nil || !info.IsDir() {
		return errors.Newf("Root %q does not exist or is not a directory", cfg.Root)
	}
	if cfg.Concurrency < 0 {
		return errors.Newf("Concurrency must not be negative, got %d", cfg.Concurrency)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Debounce == 0 {
		cfg.Debounce = watch.DefaultDebounce
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
}

// Root returns the absolute source directory.
func (p *Project) Root() string { return p.cfg.Root }

// Close releases the snapshot database.
func (p *Project) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Build scans every source file under the root and replaces the registry
// with their declarations. The ignore rules are read again, every file is
// read again, and only files whose content is unchanged reuse their cached
// scan. Files are scanned in parallel and registered in path order. With a
// database the result is saved as a new build.
func (p *Project) Build(ctx context.Context) (*BuildResult, error) {
	filter, err := source.NewFilter(p.cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, "loading sources")
	}
	paths, err := filter.Files()
	if err != nil {
		return nil, errors.Wrap(err, "loading sources")
	}
	files, err := source.LoadFiles(ctx, paths, p.cfg.Concurrency, p.cache)
	if err != nil {
		return nil, errors.Wrap(err, "loading sources")
	}
	p.cache.Retain(paths)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.filter = filter
	p.reg.Clear()
	p.files = make(map[string]*source.File, len(files))
	res := &BuildResult{}
	for _, f := range files {
		doc := p.document(f.Path)
		p.files[doc] = f
		p.register(doc, f)
		res.Diagnostics = append(res.Diagnostics, f.Diagnostics...)
	}
	res.Documents = len(files)
	res.Entries = p.reg.Len()

	if p.store != nil {
		b, err := p.store.SaveBuild(ctx, p.cfg.Root, p.reg.Entries())
		if err != nil {
			return nil, err
		}
		p.buildID = b.ID
		res.BuildID = b.ID
	}

	p.log.Info("build complete",
		zap.String("root", p.cfg.Root),
		zap.Int("documents", res.Documents),
		zap.Int("entries", res.Entries),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

// Rebuild rescans one file, given by absolute path or by path relative to
// the root, and replaces exactly that document's entries. A file that no
// longer exists, or that Build would not pick up, is dropped from the index.
func (p *Project) Rebuild(ctx context.Context, path string) (*BuildResult, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.cfg.Root, path)
	}
	doc := p.document(path)
	p.cache.Invalidate(path)

	p.mu.RLock()
	included := p.filter.Includes(path)
	p.mu.RUnlock()

	var f *source.File
	if !included {
		p.log.Debug("path outside the source tree", zap.String("path", path))
	} else if _, err := os.Stat(path); err == nil {
		if f, err = p.cache.Load(path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := p.reg.ClearDocument(doc)
	delete(p.files, doc)
	res := &BuildResult{BuildID: p.buildID}
	if f != nil {
		p.files[doc] = f
		p.register(doc, f)
		res.Documents = 1
		res.Diagnostics = f.Diagnostics
	}
	added := p.reg.ByDocument(doc)
	res.Entries = len(added)

	if p.store != nil && p.buildID != "" {
		if err := p.store.ReplaceDocument(ctx, p.buildID, doc, added); err != nil {
			return nil, err
		}
	}

	p.log.Info("document rebuilt",
		zap.String("document", doc),
		zap.Int("removed", removed),
		zap.Int("added", len(added)))
	return res, nil
}

// Restore replaces the registry with a saved build, the newest one when
// buildID is empty. Document trees are not restored, so Outline and Select
// stay empty until the next Build.
func (p *Project) Restore(ctx context.Context, buildID string) (Build, error) {
	if p.store == nil {
		return Build{}, ErrNoStore
	}
	var (
		b   Build
		err error
	)
	if buildID == "" {
		b, err = p.store.Latest(ctx)
	} else {
		b, err = p.store.Get(ctx, buildID)
	}
	if err != nil {
		return Build{}, err
	}
	entries, err := p.store.LoadEntries(ctx, b.ID)
	if err != nil {
		return Build{}, err
	}
	b.Entries = len(entries)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.reg.Clear()
	p.reg.Restore(entries)
	p.files = make(map[string]*source.File)
	p.buildID = b.ID
	return b, nil
}

// Builds lists the saved builds, newest first.
func (p *Project) Builds(ctx context.Context) ([]Build, error) {
	if p.store == nil {
		return nil, ErrNoStore
	}
	return p.store.Builds(ctx)
}

// Find returns the entries of kind that target names from scope.
func (p *Project) Find(kind types.Kind, scope types.Scope, target string) ([]types.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg.Find(kind, scope, target)
}

// Resolve resolves cross-reference role text written inside scope,
// logging unresolved and ambiguous references.
func (p *Project) Resolve(kind types.Kind, scope types.Scope, text string) (Resolution, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return xref.NewResolver(p.reg, p.log).Resolve(kind, scope, text)
}

// Snapshot returns every registry entry in registration order.
func (p *Project) Snapshot() []types.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg.Entries()
}

// Documents returns the sorted names of the indexed documents.
func (p *Project) Documents() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg.Documents()
}

// Select parses pattern as a declaration of kind and returns the matching
// declarations of every document, documents in name order.
func (p *Project) Select(kind types.Kind, pattern string) ([]types.Declaration, error) {
	pat, err := sigparse.Parse(kind, pattern)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []types.Declaration
	for _, doc := range p.sortedDocs() {
		for _, decl := range p.files[doc].Decls {
			out = append(out, registry.Select(decl, pat)...)
		}
	}
	return out, nil
}

// Outline lists the declarations of doc, or of every document when doc is
// empty, in source order.
func (p *Project) Outline(doc string) ([]OutlineItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	docs := p.sortedDocs()
	if doc != "" {
		doc = filepath.ToSlash(filepath.Clean(doc))
		if _, ok := p.files[doc]; !ok {
			return nil, errors.Newf("document %q is not indexed", doc)
		}
		docs = []string{doc}
	}

	var items []OutlineItem
	for _, d := range docs {
		for _, decl := range p.files[d].Decls {
			registry.Walk(decl, types.Scope{}, func(decl types.Declaration, scope types.Scope) {
				items = append(items, OutlineItem{
					Document:    d,
					Kind:        decl.Kind(),
					QualifiedID: scope.Qualify(decl.DeclName()),
					Header:      sigparse.FormatDeclaration(decl),
					Depth:       len(scope),
					Summary:     summary(decl.Doc()),
				})
			})
		}
	}
	return items, nil
}

// Watch rebuilds changed documents until ctx is done. It watches the
// directories the ignore rules of the last Build admit.
func (p *Project) Watch(ctx context.Context) error {
	p.mu.RLock()
	filter := p.filter
	p.mu.RUnlock()

	w, err := watch.New(p.cfg.Root, filter, p.cfg.Debounce, func(ctx context.Context, paths []string) {
		for _, path := range paths {
			if _, err := p.Rebuild(ctx, path); err != nil {
				p.log.Warn("rebuild failed", zap.String("path", path), zap.Error(err))
			}
		}
	}, p.log)
	if err != nil {
		return err
	}
	p.log.Info("watching", zap.String("root", p.cfg.Root))
	return w.Run(ctx)
}

func (p *Project) register(doc string, f *source.File) {
	for _, decl := range f.Decls {
		p.reg.RegisterTree(doc, nil, decl)
	}
}

// document names a file by its slash-separated path below the root.
func (p *Project) document(path string) string {
	rel, err := filepath.Rel(p.cfg.Root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (p *Project) sortedDocs() []string {
	docs := make([]string, 0, len(p.files))
	for d := range p.files {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// summary returns the first prose line of a docstring, skipping the
// indented signature lines Julia docstrings start with.
func summary(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "    ") {
			continue
		}
		return strings.TrimSpace(line)
	}
	return ""
}
