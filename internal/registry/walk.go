// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package registry

import "github.com/petar-djukic/go-jldoc/pkg/types"

// VisitFunc is called for each declaration of a tree with the scope that
// encloses it.
type VisitFunc func(decl types.Declaration, scope types.Scope)

// Walk visits decl and its descendants depth-first in source order. A
// module's children see the module name pushed onto their scope; a
// composite type's constructors share the type's scope. The scope is passed
// by value, never shared between siblings.
func Walk(decl types.Declaration, scope types.Scope, visit VisitFunc) {
	visit(decl, scope)
	switch d := decl.(type) {
	case *types.Module:
		inner := scope.Push(d.Name)
		for _, child := range d.Body {
			Walk(child, inner, visit)
		}
	case *types.CompositeType:
		for _, ctor := range d.Constructors {
			Walk(ctor, scope, visit)
		}
	}
}

// RegisterTree registers decl and every declaration nested in it, returning
// the new entries in registration order.
func (r *Registry) RegisterTree(doc string, scope types.Scope, decl types.Declaration) []types.Entry {
	var added []types.Entry
	Walk(decl, scope, func(d types.Declaration, s types.Scope) {
		added = append(added, r.Register(doc, s, d))
	})
	return added
}

// Select returns the declarations in the tree rooted at root that match
// pattern, in source order.
func Select(root types.Declaration, pattern types.Declaration) []types.Declaration {
	var matches []types.Declaration
	Walk(root, types.Scope{}, func(d types.Declaration, _ types.Scope) {
		if d.Matches(pattern) {
			matches = append(matches, d)
		}
	})
	return matches
}
