// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package registry

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/petar-djukic/go-jldoc/internal/sigparse"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Find returns, in registration order, the entries of kind that target
// names when written inside current.
//
// A bare name matches in any scope. A dotted name without leading dots is
// tried as an absolute path first and then relative to current. Leading
// dots make the reference relative, climbing one level per dot after the
// first. For functions the target may carry template parameters and an
// argument list, which filter overloads. An empty result means the
// reference is unresolved; more than one means it is ambiguous.
//
// Only a malformed function target returns an error.
func (r *Registry) Find(kind types.Kind, current types.Scope, target string) ([]types.Entry, error) {
	if kind == types.KindFunction {
		return r.findFunction(current, target)
	}
	return r.search(kind, current, ParseReference(target), nil), nil
}

// findFunction parses target as a function pattern and filters overloads
// by template parameters and signature.
func (r *Registry) findFunction(current types.Scope, target string) ([]types.Entry, error) {
	target = strings.TrimSpace(target)
	dots := leadingDots(target)
	if strings.TrimSpace(target[dots:]) == "" {
		return nil, nil // nothing to name, as for other kinds
	}
	pattern, err := sigparse.ParseFunction(target[dots:])
	if err != nil {
		return nil, errors.Wrapf(err, "function reference %q", target)
	}

	ref := Reference{Dots: dots, Path: types.ParseScope(pattern.OwningModule), Name: pattern.Name}
	accept := func(e types.Entry) bool {
		if e.Signature == nil {
			return false
		}
		if !types.MatchTemplateParameters(pattern.TemplateParameters, e.TemplateParameters) {
			return false
		}
		return types.MatchSignature(pattern.Signature, *e.Signature)
	}
	return r.search(types.KindFunction, current, ref, accept), nil
}

// search applies the scope rules to ref and collects accepted entries.
func (r *Registry) search(kind types.Kind, current types.Scope, ref Reference, accept func(types.Entry) bool) []types.Entry {
	if ref.Name == "" {
		return nil
	}

	if ref.IsBare() {
		return r.collect(kind, ref.Name, nil, accept)
	}

	scope, ok := ref.scopeFrom(current)
	if !ok {
		return nil
	}
	matches := r.collect(kind, ref.Name, scope, accept)
	if len(matches) > 0 || ref.Dots > 0 {
		return matches
	}

	// An absolute path that found nothing is retried below the current scope.
	return r.collect(kind, ref.Name, current.Push(ref.Path...), accept)
}

// collect returns the entries of kind named name whose scope equals scope,
// or in any scope when scope is nil.
func (r *Registry) collect(kind types.Kind, name string, scope types.Scope, accept func(types.Entry) bool) []types.Entry {
	var out []types.Entry
	for _, idx := range r.byName[kind][name] {
		e := r.entries[idx]
		if scope != nil && !scope.Equal(e.Scope) {
			continue
		}
		if accept != nil && !accept(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}
