// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Declaration is a parsed Julia declaration. The set of implementations is
// closed: *Module, *AbstractType, *CompositeType, and *Function.
type Declaration interface {
	Kind() Kind
	DeclName() string
	TemplateParams() []string
	Doc() string

	// Matches reports whether the declaration satisfies pattern. A pattern
	// of a different kind never matches.
	Matches(pattern Declaration) bool

	sealed()
}

// Module is a module or baremodule with its body in source order.
type Module struct {
	Name      string        `json:"name" yaml:"name"`
	Body      []Declaration `json:"body,omitempty" yaml:"body,omitempty"`
	Docstring string        `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Bare      bool          `json:"bare,omitempty" yaml:"bare,omitempty"` // Declared with baremodule
}

func (m *Module) Kind() Kind               { return KindModule }
func (m *Module) DeclName() string         { return m.Name }
func (m *Module) TemplateParams() []string { return nil }
func (m *Module) Doc() string              { return m.Docstring }
func (m *Module) sealed()                  {}

// Matches compares module names.
func (m *Module) Matches(pattern Declaration) bool {
	p, ok := pattern.(*Module)
	return ok && p.Name == m.Name
}

// AbstractType is an "abstract type" declaration.
type AbstractType struct {
	Name               string   `json:"name" yaml:"name"`
	TemplateParameters []string `json:"template_parameters,omitempty" yaml:"template_parameters,omitempty"`
	ParentType         string   `json:"parent_type,omitempty" yaml:"parent_type,omitempty"`
	Docstring          string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

func (a *AbstractType) Kind() Kind               { return KindAbstract }
func (a *AbstractType) DeclName() string         { return a.Name }
func (a *AbstractType) TemplateParams() []string { return a.TemplateParameters }
func (a *AbstractType) Doc() string              { return a.Docstring }
func (a *AbstractType) sealed()                  {}

// Matches compares type names.
func (a *AbstractType) Matches(pattern Declaration) bool {
	p, ok := pattern.(*AbstractType)
	return ok && p.Name == a.Name
}

// CompositeType is a struct or mutable struct with its fields and inner
// constructors.
type CompositeType struct {
	Name               string      `json:"name" yaml:"name"`
	TemplateParameters []string    `json:"template_parameters,omitempty" yaml:"template_parameters,omitempty"`
	ParentType         string      `json:"parent_type,omitempty" yaml:"parent_type,omitempty"`
	Fields             []Field     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors       []*Function `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Mutable            bool        `json:"mutable,omitempty" yaml:"mutable,omitempty"`
	Docstring          string      `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

func (c *CompositeType) Kind() Kind               { return KindComposite }
func (c *CompositeType) DeclName() string         { return c.Name }
func (c *CompositeType) TemplateParams() []string { return c.TemplateParameters }
func (c *CompositeType) Doc() string              { return c.Docstring }
func (c *CompositeType) sealed()                  {}

// Matches compares type names.
func (c *CompositeType) Matches(pattern Declaration) bool {
	p, ok := pattern.(*CompositeType)
	return ok && p.Name == c.Name
}

// Function is a function or method definition. OwningModule is the dotted
// qualifier written directly before the name ("Base" in "Base.show"),
// independent of the lexical scope the definition appears in.
type Function struct {
	Name               string    `json:"name" yaml:"name"`
	OwningModule       string    `json:"owning_module,omitempty" yaml:"owning_module,omitempty"`
	TemplateParameters []string  `json:"template_parameters,omitempty" yaml:"template_parameters,omitempty"`
	Signature          Signature `json:"signature" yaml:"signature"`
	ReturnType         string    `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Docstring          string    `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

func (f *Function) Kind() Kind               { return KindFunction }
func (f *Function) DeclName() string         { return f.Name }
func (f *Function) TemplateParams() []string { return f.TemplateParameters }
func (f *Function) Doc() string              { return f.Docstring }
func (f *Function) sealed()                  {}

// Matches compares names, template parameter sets, and signatures using the
// overload rules of MatchTemplateParameters and MatchSignature.
func (f *Function) Matches(pattern Declaration) bool {
	p, ok := pattern.(*Function)
	if !ok || p.Name != f.Name {
		return false
	}
	if !MatchTemplateParameters(p.TemplateParameters, f.TemplateParameters) {
		return false
	}
	return MatchSignature(p.Signature, f.Signature)
}
