// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package registry

import (
	"strings"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Reference is a cross-reference target split into its parts:
// "..Geometry.area" has Dots 2, Path [Geometry], and Name "area".
type Reference struct {
	Dots int         // Leading "." characters
	Path types.Scope // Dotted segments between the dots and the name
	Name string      // Bare name
}

// ParseReference splits a dotted reference target.
func ParseReference(target string) Reference {
	target = strings.TrimSpace(target)
	dots := leadingDots(target)
	rest := target[dots:]

	ref := Reference{Dots: dots, Path: types.Scope{}}
	if i := strings.LastIndex(rest, types.Separator); i >= 0 {
		ref.Path = types.ParseScope(rest[:i])
		ref.Name = rest[i+1:]
	} else {
		ref.Name = rest
	}
	return ref
}

// IsBare reports whether the reference is a plain name with no leading or
// embedded dots.
func (r Reference) IsBare() bool {
	return r.Dots == 0 && len(r.Path) == 0
}

// ResolveScope computes the scope and bare name that target names when
// written inside current.
//
// With no leading dot the path is absolute from the root. One leading dot
// makes it relative to current. Each further dot walks one level toward the
// root before the path is appended. It reports false when the dots climb
// past the root.
func ResolveScope(current types.Scope, target string) (types.Scope, string, bool) {
	ref := ParseReference(target)
	scope, ok := ref.scopeFrom(current)
	return scope, ref.Name, ok
}

func (r Reference) scopeFrom(current types.Scope) (types.Scope, bool) {
	if r.Dots == 0 {
		return types.Scope{}.Push(r.Path...), true
	}
	base, ok := current.Pop(r.Dots - 1)
	if !ok {
		return nil, false
	}
	return base.Push(r.Path...), true
}

func leadingDots(s string) int {
	n := 0
	for n < len(s) && s[n] == '.' {
		n++
	}
	return n
}
