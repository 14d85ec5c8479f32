// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package registry stores registered declarations and resolves
// partially-qualified references against them.
package registry

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/petar-djukic/go-jldoc/internal/sigparse"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Registry holds every registration of a build and indexes it by kind and
// bare name, and by source document. Entries keep insertion order.
//
// A Registry is not safe for concurrent use; a build registers documents
// one at a time.
type Registry struct {
	entries []types.Entry
	byName  map[types.Kind]map[string][]int
	byDoc   map[string][]int
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.entries = nil
	r.byName = make(map[types.Kind]map[string][]int, len(types.Kinds))
	r.byDoc = make(map[string][]int)
}

// Register records one declaration found in doc at scope and returns the
// new entry. Every call adds an entry, so overloads sharing a name each get
// their own.
func (r *Registry) Register(doc string, scope types.Scope, decl types.Declaration) types.Entry {
	scope = types.Scope{}.Push(scope...)
	name := decl.DeclName()
	e := types.Entry{
		Kind:        decl.Kind(),
		Name:        name,
		Scope:       scope,
		QualifiedID: scope.Qualify(name),
		Document:    doc,
	}
	if params := decl.TemplateParams(); len(params) > 0 {
		e.TemplateParameters = append([]string(nil), params...)
	}
	e.Anchor = e.QualifiedID
	if fn, ok := decl.(*types.Function); ok {
		sig := fn.Signature.Clone()
		e.Signature = &sig
		e.Anchor = scope.Qualify(name + "-" + overloadHash(fn))
	}
	r.add(e)
	return e
}

// Restore re-adds entries loaded from a snapshot, as-is and in order.
func (r *Registry) Restore(entries []types.Entry) {
	for _, e := range entries {
		r.add(e)
	}
}

func (r *Registry) add(e types.Entry) {
	idx := len(r.entries)
	r.entries = append(r.entries, e)
	names, ok := r.byName[e.Kind]
	if !ok {
		names = make(map[string][]int)
		r.byName[e.Kind] = names
	}
	names[e.Name] = append(names[e.Name], idx)
	r.byDoc[e.Document] = append(r.byDoc[e.Document], idx)
}

// ClearDocument removes exactly the entries registered from doc and
// reports how many were removed. Other documents keep their entries and
// relative order.
func (r *Registry) ClearDocument(doc string) int {
	removed := len(r.byDoc[doc])
	if removed == 0 {
		return 0
	}
	kept := make([]types.Entry, 0, len(r.entries)-removed)
	for _, e := range r.entries {
		if e.Document != doc {
			kept = append(kept, e)
		}
	}
	r.reset()
	r.Restore(kept)
	return removed
}

// Clear drops every entry, as before a full rebuild.
func (r *Registry) Clear() {
	r.reset()
}

// Entries returns every entry in insertion order.
func (r *Registry) Entries() []types.Entry {
	result := make([]types.Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// ByDocument returns the entries registered from doc.
func (r *Registry) ByDocument(doc string) []types.Entry {
	return r.lookup(r.byDoc[doc])
}

// Documents returns the sorted names of all documents with entries.
func (r *Registry) Documents() []string {
	docs := make([]string, 0, len(r.byDoc))
	for d := range r.byDoc {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// Len returns the total number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) lookup(indices []int) []types.Entry {
	if len(indices) == 0 {
		return nil
	}
	result := make([]types.Entry, len(indices))
	for i, idx := range indices {
		result[i] = r.entries[idx]
	}
	return result
}

// overloadHash derives a short stable id from a function's template
// parameters and signature so each overload gets its own anchor.
func overloadHash(fn *types.Function) string {
	key := strings.Join(fn.TemplateParameters, ",") + "|" + sigparse.FormatSignature(fn.Signature)
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}
