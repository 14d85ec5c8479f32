// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"strings"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

const varargMarker = "..."

// ParseArgument parses a single argument token such as
// "x::Vector{T}=T[]" or "@nospecialize(f)". The default value follows the
// last top-level assignment; the type follows the first top-level "::" of
// what remains.
func ParseArgument(text string) (types.Argument, error) {
	text = strings.TrimSpace(text)
	if err := checkBalanced(text); err != nil {
		return types.Argument{}, err
	}

	var arg types.Argument
	text, arg.Decorator = splitDecorator(text)

	if i := lastTopLevelAssign(text); i >= 0 {
		arg.Default = strings.TrimSpace(text[i+1:])
		text = strings.TrimSpace(text[:i])
	}
	if i := indexTopLevel(text, "::"); i >= 0 {
		arg.Type = strings.TrimSpace(text[i+2:])
		text = strings.TrimSpace(text[:i])
	}
	arg.Name = text
	return arg, nil
}

// splitDecorator strips a leading macro call. Both "@m x" and the call
// form "@m(x)" are recognized.
func splitDecorator(text string) (rest, decorator string) {
	if !strings.HasPrefix(text, "@") {
		return text, ""
	}
	j := 1
	for j < len(text) && (isIdentByte(text[j]) || text[j] == '.') {
		j++
	}
	decorator = text[:j]
	rest = text[j:]
	if strings.HasPrefix(rest, "(") {
		if k := FindClosing(rest, 0); k == len(rest)-1 {
			return strings.TrimSpace(rest[1:k]), decorator
		}
	}
	return strings.TrimSpace(rest), decorator
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '!' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
