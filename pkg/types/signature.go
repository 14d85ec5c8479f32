// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Argument is one entry of a function signature.
type Argument struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`           // Bare argument name
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`           // Text after "::"
	Default   string `json:"default,omitempty" yaml:"default,omitempty"`     // Raw default-value expression
	Decorator string `json:"decorator,omitempty" yaml:"decorator,omitempty"` // Leading macro call, e.g. "@nospecialize"
}

// Signature holds the arguments of a function, split into the five slots
// an argument can occupy. An argument appears in exactly one slot.
type Signature struct {
	Positional []Argument `json:"positional,omitempty" yaml:"positional,omitempty"`
	Optional   []Argument `json:"optional,omitempty" yaml:"optional,omitempty"` // Positional arguments with defaults
	Keyword    []Argument `json:"keyword,omitempty" yaml:"keyword,omitempty"`   // Arguments after ";"
	Vararg     *Argument  `json:"vararg,omitempty" yaml:"vararg,omitempty"`     // Catch-all positional slot
	KwVararg   *Argument  `json:"kwvararg,omitempty" yaml:"kwvararg,omitempty"` // Catch-all keyword slot
}

// IsEmpty reports whether the signature has no arguments and no vararg
// markers. An empty signature used as a query pattern matches any overload.
func (s Signature) IsEmpty() bool {
	return len(s.Positional) == 0 && len(s.Optional) == 0 && len(s.Keyword) == 0 &&
		s.Vararg == nil && s.KwVararg == nil
}

// Arity returns the number of positional plus optional arguments.
func (s Signature) Arity() int {
	return len(s.Positional) + len(s.Optional)
}

// Ordered returns the positional arguments followed by the optional ones.
func (s Signature) Ordered() []Argument {
	out := make([]Argument, 0, s.Arity())
	out = append(out, s.Positional...)
	return append(out, s.Optional...)
}

// Clone returns a deep copy so registry snapshots never share slices with
// the parse tree.
func (s Signature) Clone() Signature {
	c := Signature{
		Positional: cloneArgs(s.Positional),
		Optional:   cloneArgs(s.Optional),
		Keyword:    cloneArgs(s.Keyword),
	}
	if s.Vararg != nil {
		v := *s.Vararg
		c.Vararg = &v
	}
	if s.KwVararg != nil {
		v := *s.KwVararg
		c.KwVararg = &v
	}
	return c
}

func cloneArgs(args []Argument) []Argument {
	if args == nil {
		return nil
	}
	out := make([]Argument, len(args))
	copy(out, args)
	return out
}

// Field is a field declaration inside a composite type.
type Field struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}
