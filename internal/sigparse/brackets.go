// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sigparse turns textual Julia declarations into the records of
// pkg/types. Parsing is deterministic, never consults a registry, and never
// backtracks: each clause is located, parsed, and excised from the working
// text before the next clause is searched.
package sigparse

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedSignature reports unbalanced brackets or a missing required
// clause. Every parse error wraps it.
var ErrMalformedSignature = errors.New("malformed signature")

// malformed wraps ErrMalformedSignature with a message and the input text.
func malformed(input, format string, args ...interface{}) error {
	err := errors.Wrapf(ErrMalformedSignature, format, args...)
	return errors.WithDetailf(err, "input: %q", input)
}

var closers = map[byte]byte{
	'(': ')',
	'[': ']',
	'{': '}',
}

// FindClosing returns the index of the bracket that closes the opening
// bracket at text[start], or -1. Only brackets of the same kind are
// counted; a closer of another kind does not end the nesting.
func FindClosing(text string, start int) int {
	if start < 0 || start >= len(text) {
		return -1
	}
	open := text[start]
	closer, ok := closers[open]
	if !ok {
		return -1
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// checkBalanced verifies that each bracket kind is balanced on its own.
// Kinds are tracked independently, so "([)]" passes.
func checkBalanced(text string) error {
	var paren, square, curly int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			square++
		case ']':
			square--
		case '{':
			curly++
		case '}':
			curly--
		default:
			continue
		}
		if paren < 0 || square < 0 || curly < 0 {
			return malformed(text, "unexpected %q at index %d", text[i], i)
		}
	}
	switch {
	case paren > 0:
		return malformed(text, "unclosed '('")
	case square > 0:
		return malformed(text, "unclosed '['")
	case curly > 0:
		return malformed(text, "unclosed '{'")
	}
	return nil
}

// scanTopLevel calls fn with the index of every byte that is not nested
// inside a bracket pair. Bracketed spans are skipped whole. fn returns
// false to stop the scan.
func scanTopLevel(text string, fn func(i int) bool) error {
	for i := 0; i < len(text); i++ {
		if _, ok := closers[text[i]]; ok {
			j := FindClosing(text, i)
			if j < 0 {
				return malformed(text, "bracket %q at index %d is never closed", text[i], i)
			}
			i = j
			continue
		}
		if !fn(i) {
			return nil
		}
	}
	return nil
}

// indexTopLevel returns the first top-level index of sub, or -1.
func indexTopLevel(text, sub string) int {
	found := -1
	// Balance is checked by the callers; a scan error leaves found at -1.
	_ = scanTopLevel(text, func(i int) bool {
		if strings.HasPrefix(text[i:], sub) {
			found = i
			return false
		}
		return true
	})
	return found
}

// lastTopLevelAssign returns the index of the last top-level "=" that is an
// assignment rather than part of "==", "=>", "<=", ">=", "!=" or "===".
func lastTopLevelAssign(text string) int {
	found := -1
	_ = scanTopLevel(text, func(i int) bool {
		if text[i] == '=' && isAssign(text, i) {
			found = i
		}
		return true
	})
	return found
}

func isAssign(text string, i int) bool {
	if i+1 < len(text) && (text[i+1] == '=' || text[i+1] == '>') {
		return false
	}
	if i > 0 {
		switch text[i-1] {
		case '=', '<', '>', '!', ':':
			return false
		}
	}
	return true
}

// splitTopLevel splits text at every top-level sep byte.
func splitTopLevel(text string, sep byte) ([]string, error) {
	var parts []string
	start := 0
	err := scanTopLevel(text, func(i int) bool {
		if text[i] == sep {
			parts = append(parts, text[start:i])
			start = i + 1
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return append(parts, text[start:]), nil
}

// splitParams parses the inside of a template brace group.
func splitParams(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	parts, err := splitTopLevel(text, ',')
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, malformed(text, "empty template parameter")
		}
		params = append(params, p)
	}
	return params, nil
}

// excise removes text[start:end+1], leaving a single space so the
// surrounding clauses stay separated.
func excise(text string, start, end int) string {
	return text[:start] + " " + text[end+1:]
}

// indexOrLen returns the index of sub in text, or len(text) when absent.
func indexOrLen(text, sub string) int {
	if i := strings.Index(text, sub); i >= 0 {
		return i
	}
	return len(text)
}
