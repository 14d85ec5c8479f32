// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"strings"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// typeHeader is the common part of abstract and composite type headers.
type typeHeader struct {
	name   string
	params []string
	parent string
}

// ParseType parses a type header such as "Point{T} <: AbstractPoint{T}".
// A leading "abstract type" selects *types.AbstractType; "struct",
// "mutable struct", or no keyword selects *types.CompositeType. A trailing
// "end" is ignored so one-line declarations parse as well.
func ParseType(text string) (types.Declaration, error) {
	trimmed := strings.TrimSpace(text)
	if rest, ok := cutKeyword(trimmed, "abstract"); ok {
		if rest, ok = cutKeyword(rest, "type"); ok {
			a, err := ParseAbstract(rest)
			if err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	c, err := ParseComposite(trimmed)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ParseAbstract parses an abstract type header. The "abstract type"
// keywords are optional.
func ParseAbstract(text string) (*types.AbstractType, error) {
	text = strings.TrimSpace(text)
	if rest, ok := cutKeyword(text, "abstract"); ok {
		if rest, ok = cutKeyword(rest, "type"); ok {
			text = rest
		}
	}
	h, err := parseTypeHeader(text)
	if err != nil {
		return nil, err
	}
	return &types.AbstractType{
		Name:               h.name,
		TemplateParameters: h.params,
		ParentType:         h.parent,
	}, nil
}

// ParseComposite parses a struct header. The "struct" and "mutable struct"
// keywords are optional.
func ParseComposite(text string) (*types.CompositeType, error) {
	text = strings.TrimSpace(text)
	mutable := false
	if rest, ok := cutKeyword(text, "mutable"); ok {
		text = rest
		mutable = true
	}
	if rest, ok := cutKeyword(text, "struct"); ok {
		text = rest
	}
	h, err := parseTypeHeader(text)
	if err != nil {
		return nil, err
	}
	return &types.CompositeType{
		Name:               h.name,
		TemplateParameters: h.params,
		ParentType:         h.parent,
		Mutable:            mutable,
	}, nil
}

// parseTypeHeader splits the parent clause at the first top-level "<:"
// and then the template group at the first "{" of what remains.
func parseTypeHeader(text string) (typeHeader, error) {
	input := text
	var h typeHeader
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), " end"))
	if err := checkBalanced(text); err != nil {
		return h, err
	}

	if i := indexTopLevel(text, "<:"); i >= 0 {
		h.parent = strings.TrimSpace(text[i+2:])
		if h.parent == "" {
			return h, malformed(input, "empty parent type")
		}
		text = text[:i]
	}

	if i := strings.Index(text, "{"); i >= 0 {
		end := FindClosing(text, i)
		if end < 0 {
			return h, malformed(input, "unclosed template parameter group")
		}
		if strings.TrimSpace(text[end+1:]) != "" {
			return h, malformed(input, "unexpected text after template parameters")
		}
		params, err := splitParams(text[i+1 : end])
		if err != nil {
			return h, err
		}
		h.params = params
		text = text[:i]
	}

	h.name = strings.TrimSpace(text)
	if err := checkName(input, h.name); err != nil {
		return h, err
	}
	return h, nil
}

// ParseModule parses a module header: "module Name", "baremodule Name",
// or a bare name.
func ParseModule(text string) (*types.Module, error) {
	text = strings.TrimSpace(text)
	m := &types.Module{}
	if rest, ok := cutKeyword(text, "baremodule"); ok {
		text = rest
		m.Bare = true
	} else if rest, ok := cutKeyword(text, "module"); ok {
		text = rest
	}
	if err := checkName(text, text); err != nil {
		return nil, err
	}
	m.Name = text
	return m, nil
}

// checkName rejects empty names and names containing separators, brackets,
// or whitespace.
func checkName(input, name string) error {
	if name == "" {
		return malformed(input, "missing name")
	}
	if strings.ContainsAny(name, ".(){}[] \t") {
		return malformed(input, "invalid name %q", name)
	}
	return nil
}

// Parse dispatches on kind to the matching parser.
func Parse(kind types.Kind, text string) (types.Declaration, error) {
	var (
		d   types.Declaration
		err error
	)
	switch kind {
	case types.KindModule:
		var m *types.Module
		m, err = ParseModule(text)
		d = m
	case types.KindAbstract:
		var a *types.AbstractType
		a, err = ParseAbstract(text)
		d = a
	case types.KindComposite:
		var c *types.CompositeType
		c, err = ParseComposite(text)
		d = c
	case types.KindFunction:
		var f *types.Function
		f, err = ParseFunction(text)
		d = f
	default:
		return nil, malformed(text, "unknown declaration kind %d", int(kind))
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
