// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// ParseFunction parses a function header. Accepted forms include
//
//	name
//	name(args)
//	Qualifier.name(args)
//	name{T1,T2}(args)
//	name(args) where {T1,T2}
//	name(args)::ReturnType
//	name(args) -> ReturnType
//
// and combinations of them. A leading "function" keyword is ignored.
//
// The template group, the argument list, and the return type are handled
// in the order their introducers appear in the text. The where clause is
// taken after the argument list and before the return type. Giving template
// parameters both after the name and in a where clause is an error.
func ParseFunction(text string) (*types.Function, error) {
	input := text
	text = strings.TrimSpace(text)
	if rest, ok := cutKeyword(text, "function"); ok {
		text = rest
	}
	if err := checkBalanced(text); err != nil {
		return nil, err
	}

	fn := &types.Function{}
	iBrace := indexOrLen(text, "{")
	iParen := indexOrLen(text, "(")
	iReturn := returnIndex(text)

	braceTemplates := false
	if w := indexWhere(text); iBrace < iParen && iBrace < iReturn && (w < 0 || iBrace < w) {
		end := FindClosing(text, iBrace)
		if end < 0 {
			return nil, malformed(input, "unclosed template parameter group")
		}
		params, err := splitParams(text[iBrace+1 : end])
		if err != nil {
			return nil, err
		}
		fn.TemplateParameters = params
		braceTemplates = true
		text = excise(text, iBrace, end)
		iParen = indexOrLen(text, "(")
		iReturn = returnIndex(text)
	}

	if iParen < iReturn {
		end := FindClosing(text, iParen)
		if end < 0 {
			return nil, malformed(input, "unclosed argument list")
		}
		sig, err := ParseArgumentList(text[iParen+1 : end])
		if err != nil {
			return nil, errors.Wrapf(err, "arguments of %q", input)
		}
		fn.Signature = sig
		text = excise(text, iParen, end)
	}

	if i := indexWhere(text); i >= 0 {
		if braceTemplates {
			return nil, malformed(input, "template parameters given both after the name and in a where clause")
		}
		rest := text[i+len("where"):]
		open := len(rest) - len(strings.TrimLeft(rest, " \t"))
		if open >= len(rest) || rest[open] != '{' {
			return nil, malformed(input, "where clause without a brace group")
		}
		end := FindClosing(rest, open)
		if end < 0 {
			return nil, malformed(input, "unclosed where clause")
		}
		params, err := splitParams(rest[open+1 : end])
		if err != nil {
			return nil, err
		}
		fn.TemplateParameters = params
		text = text[:i] + " " + rest[end+1:]
	}

	if i := returnIndex(text); i < len(text) {
		fn.ReturnType = strings.TrimSpace(text[i+2:])
		if fn.ReturnType == "" {
			return nil, malformed(input, "empty return type")
		}
		text = text[:i]
	}

	name := strings.TrimSpace(text)
	if strings.ContainsAny(name, "(){}[] \t") {
		return nil, malformed(input, "unexpected text %q around the function name", name)
	}
	if i := strings.LastIndex(name, types.Separator); i >= 0 {
		fn.OwningModule = name[:i]
		name = name[i+1:]
	}
	if name == "" {
		return nil, malformed(input, "missing function name")
	}
	fn.Name = name
	return fn, nil
}

// returnIndex locates the earliest top-level return-type introducer, "::"
// or "->", or len(text) when there is none. Introducers nested in the
// template group or the argument list are not return types.
func returnIndex(text string) int {
	i := indexTopLevel(text, "::")
	if i < 0 {
		i = len(text)
	}
	if j := indexTopLevel(text, "->"); j >= 0 && j < i {
		return j
	}
	return i
}

// indexWhere returns the index of a standalone "where" keyword, or -1.
func indexWhere(text string) int {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], "where")
		if i < 0 {
			return -1
		}
		i += from
		before := i == 0 || !isIdentByte(text[i-1])
		after := i+5 == len(text) || !isIdentByte(text[i+5])
		if before && after && i > 0 {
			return i
		}
		from = i + 5
	}
	return -1
}

// cutKeyword strips a leading keyword followed by whitespace.
func cutKeyword(text, keyword string) (string, bool) {
	if !strings.HasPrefix(text, keyword) {
		return text, false
	}
	rest := text[len(keyword):]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return text, false
	}
	return strings.TrimSpace(rest), true
}
