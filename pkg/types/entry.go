// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Entry records one registration of a declaration. Entries hold identifying
// fields and a signature snapshot, never a reference to the declaration
// itself, so the registry does not keep parse trees alive.
type Entry struct {
	Kind               Kind       `json:"kind" yaml:"kind"`
	Name               string     `json:"name" yaml:"name"`
	Scope              Scope      `json:"scope" yaml:"scope"`
	QualifiedID        string     `json:"qualified_id" yaml:"qualified_id"`
	Anchor             string     `json:"anchor" yaml:"anchor"`     // Unique per overload; equals QualifiedID for non-functions
	Document           string     `json:"document" yaml:"document"` // Source document that registered the entry
	TemplateParameters []string   `json:"template_parameters,omitempty" yaml:"template_parameters,omitempty"`
	Signature          *Signature `json:"signature,omitempty" yaml:"signature,omitempty"` // Functions only
}
