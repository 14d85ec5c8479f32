// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// MatchArgument reports whether arg satisfies pattern. An empty pattern
// field matches anything; a non-empty one must equal the candidate field.
func MatchArgument(pattern, arg Argument) bool {
	if pattern.Name != "" && pattern.Name != arg.Name {
		return false
	}
	if pattern.Type != "" && pattern.Type != arg.Type {
		return false
	}
	if pattern.Default != "" && pattern.Default != arg.Default {
		return false
	}
	return true
}

// MatchSignature reports whether sig satisfies pattern.
//
// An empty pattern matches every signature. Otherwise positional plus
// optional counts must agree and match pairwise, and every keyword named in
// the pattern must exist in sig and match. Keywords the pattern does not
// mention are allowed. A vararg or kwvararg marker only turns off the
// empty-pattern wildcard; it is compared when sig carries one too.
func MatchSignature(pattern, sig Signature) bool {
	if pattern.IsEmpty() {
		return true
	}

	pargs := pattern.Ordered()
	fargs := sig.Ordered()
	if len(pargs) != len(fargs) {
		return false
	}
	for i := range pargs {
		if !MatchArgument(pargs[i], fargs[i]) {
			return false
		}
	}

	fkw := make(map[string]Argument, len(sig.Keyword))
	for _, a := range sig.Keyword {
		fkw[a.Name] = a
	}
	for _, p := range pattern.Keyword {
		a, ok := fkw[p.Name]
		if !ok || !MatchArgument(p, a) {
			return false
		}
	}

	if !matchVararg(pattern.Vararg, sig.Vararg) {
		return false
	}
	return matchVararg(pattern.KwVararg, sig.KwVararg)
}

func matchVararg(pattern, arg *Argument) bool {
	if pattern == nil || arg == nil {
		return true
	}
	return MatchArgument(*pattern, *arg)
}

// sameParameterSet compares template parameter lists as sets.
func sameParameterSet(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, s := range a {
		as[s] = true
	}
	bs := make(map[string]bool, len(b))
	for _, s := range b {
		bs[s] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if !bs[s] {
			return false
		}
	}
	return true
}

// MatchTemplateParameters applies the overload rule for template
// parameters: a pattern without parameters matches anything, otherwise the
// two parameter sets must be equal.
func MatchTemplateParameters(pattern, params []string) bool {
	if len(pattern) == 0 {
		return true
	}
	return sameParameterSet(pattern, params)
}
