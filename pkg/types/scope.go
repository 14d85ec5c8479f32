// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "strings"

// Separator joins scope elements and names into qualified ids.
const Separator = "."

// Scope is the chain of enclosing module names, outermost first. Scope
// values are never modified in place; Push and Pop return fresh slices so a
// scope can be handed down a tree walk without aliasing.
type Scope []string

// Push returns a new scope with name appended.
func (s Scope) Push(names ...string) Scope {
	out := make(Scope, 0, len(s)+len(names))
	out = append(out, s...)
	return append(out, names...)
}

// Pop returns a new scope with the n innermost elements removed. It reports
// false when n exceeds the scope depth.
func (s Scope) Pop(n int) (Scope, bool) {
	if n < 0 || n > len(s) {
		return nil, false
	}
	out := make(Scope, len(s)-n)
	copy(out, s[:len(s)-n])
	return out, true
}

// Equal reports element-wise equality. Nil and empty scopes are equal.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Qualify joins the scope and name into a qualified id.
func (s Scope) Qualify(name string) string {
	if len(s) == 0 {
		return name
	}
	return strings.Join(s, Separator) + Separator + name
}

// String renders the scope as a dotted path.
func (s Scope) String() string {
	return strings.Join(s, Separator)
}

// ParseScope splits a dotted path into a scope. The empty string yields
// the root scope.
func ParseScope(path string) Scope {
	path = strings.TrimSpace(path)
	if path == "" {
		return Scope{}
	}
	return Scope(strings.Split(path, Separator))
}
