// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"strings"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// FormatArgument renders an argument in source form, e.g.
// "@nospecialize x::Int=1" or "f! = nothing". The output parses back with
// ParseArgument.
func FormatArgument(a types.Argument) string {
	var b strings.Builder
	if a.Decorator != "" {
		b.WriteString(a.Decorator)
		b.WriteByte(' ')
	}
	b.WriteString(a.Name)
	if a.Type != "" {
		b.WriteString("::")
		b.WriteString(a.Type)
	}
	if a.Default != "" {
		if spacedAssign(b.String(), a.Default) {
			b.WriteString(" = ")
		} else {
			b.WriteByte('=')
		}
		b.WriteString(a.Default)
	}
	return b.String()
}

// spacedAssign reports whether gluing "=" between left and right would
// read as an operator such as "!=", "==" or "=>".
func spacedAssign(left, right string) bool {
	if left != "" {
		switch left[len(left)-1] {
		case '=', '<', '>', '!', ':':
			return true
		}
	}
	return right != "" && (right[0] == '=' || right[0] == '>')
}

// FormatSignature renders the argument list without parentheses. Keyword
// arguments follow "; ". The output parses back with ParseArgumentList.
func FormatSignature(s types.Signature) string {
	args := make([]string, 0, s.Arity()+1)
	for _, a := range s.Ordered() {
		args = append(args, FormatArgument(a))
	}
	if s.Vararg != nil {
		args = append(args, FormatArgument(*s.Vararg)+varargMarker)
	}
	if len(s.Keyword) == 0 && s.KwVararg == nil {
		return strings.Join(args, ", ")
	}

	kwargs := make([]string, 0, len(s.Keyword)+1)
	for _, a := range s.Keyword {
		kwargs = append(kwargs, FormatArgument(a))
	}
	if s.KwVararg != nil {
		kwargs = append(kwargs, FormatArgument(*s.KwVararg)+varargMarker)
	}
	return strings.Join(args, ", ") + "; " + strings.Join(kwargs, ", ")
}

// FormatTemplateParameters renders "{T,S}", or "" for no parameters.
func FormatTemplateParameters(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "{" + strings.Join(params, ",") + "}"
}

// FormatFunction renders a function header with template parameters in a
// where clause, e.g. "Base.show(io::IO, x::T)::Nothing where {T}".
func FormatFunction(f *types.Function) string {
	var b strings.Builder
	if f.OwningModule != "" {
		b.WriteString(f.OwningModule)
		b.WriteString(types.Separator)
	}
	b.WriteString(f.Name)
	b.WriteByte('(')
	b.WriteString(FormatSignature(f.Signature))
	b.WriteByte(')')
	if f.ReturnType != "" {
		b.WriteString("::")
		b.WriteString(f.ReturnType)
	}
	if len(f.TemplateParameters) > 0 {
		b.WriteString(" where ")
		b.WriteString(FormatTemplateParameters(f.TemplateParameters))
	}
	return b.String()
}

// FormatDeclaration renders the header line of any declaration.
func FormatDeclaration(d types.Declaration) string {
	switch v := d.(type) {
	case *types.Module:
		if v.Bare {
			return "baremodule " + v.Name
		}
		return "module " + v.Name
	case *types.AbstractType:
		return "abstract type " + typeHeaderString(v.Name, v.TemplateParameters, v.ParentType)
	case *types.CompositeType:
		prefix := "struct "
		if v.Mutable {
			prefix = "mutable struct "
		}
		return prefix + typeHeaderString(v.Name, v.TemplateParameters, v.ParentType)
	case *types.Function:
		return "function " + FormatFunction(v)
	default:
		return ""
	}
}

func typeHeaderString(name string, params []string, parent string) string {
	s := name + FormatTemplateParameters(params)
	if parent != "" {
		s += " <: " + parent
	}
	return s
}
