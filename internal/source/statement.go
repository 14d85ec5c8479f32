// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// statement is one top-level statement: text between newlines or ";" at
// bracket depth zero. A statement whose brackets are still open continues
// onto the following lines, and string literals never split.
type statement struct {
	line  int    // Line of the first non-blank byte
	start int    // Offset of the first non-blank byte
	code  string // Comments blanked
	clean string // Comments and literal contents blanked
}

func (lx *lexed) statements() []statement {
	lines := lx.lines()
	lineOf := func(off int) int {
		i := sort.Search(len(lines), func(i int) bool { return lines[i].end >= off })
		if i == len(lines) {
			return lines[len(lines)-1].no
		}
		return lines[i].no
	}

	var out []statement
	emit := func(from, to int) {
		for from < to && isSpace(lx.clean[from]) {
			from++
		}
		for to > from && isSpace(lx.clean[to-1]) {
			to--
		}
		if from == to {
			return
		}
		out = append(out, statement{
			line:  lineOf(from),
			start: from,
			code:  joinLines(string(lx.code[from:to])),
			clean: joinLines(string(lx.clean[from:to])),
		})
	}

	depth, start := 0, 0
	for i := 0; i < len(lx.clean); i++ {
		if end, ok := lx.strings[i]; ok {
			i = end - 1
			continue
		}
		switch c := lx.clean[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '\n', ';':
			if depth == 0 {
				emit(start, i)
				start = i + 1
			}
		}
	}
	emit(start, len(lx.clean))
	return out
}

// joinLines turns a multi-line statement into one line. Both views of a
// statement are joined the same way so offsets keep lining up.
func joinLines(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// word is an identifier found at bracket depth zero.
type word struct {
	text string
	pos  int
}

// topWords lists the identifiers of clean outside any brackets. Words that
// follow a "." or a single ":" are field accesses or symbols and are
// skipped.
func topWords(clean string) []word {
	var out []word
	depth := 0
	for i := 0; i < len(clean); {
		r, size := utf8.DecodeRuneInString(clean[i:])
		switch {
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			if depth > 0 {
				depth--
			}
		case isIdentRune(r) && r != '!':
			j := i
			for j < len(clean) {
				r2, s2 := utf8.DecodeRuneInString(clean[j:])
				if !isIdentRune(r2) {
					break
				}
				j += s2
			}
			if depth == 0 && !afterAccessor(clean, i) {
				out = append(out, word{text: clean[i:j], pos: i})
			}
			i = j
			continue
		}
		i += size
	}
	return out
}

func afterAccessor(s string, i int) bool {
	if i == 0 {
		return false
	}
	switch s[i-1] {
	case '.', '@':
		return true
	case ':':
		return i < 2 || s[i-2] != ':'
	}
	return false
}

// blockOpeners are the keywords closed by a matching "end".
var blockOpeners = map[string]bool{
	"function":   true,
	"macro":      true,
	"module":     true,
	"baremodule": true,
	"struct":     true,
	"if":         true,
	"for":        true,
	"while":      true,
	"let":        true,
	"begin":      true,
	"quote":      true,
	"try":        true,
	"do":         true,
}

// blockDelta counts the block openers and "end" keywords of a statement.
func blockDelta(words []word) (opens, ends int) {
	for i, w := range words {
		switch {
		case w.text == "end":
			ends++
		case blockOpeners[w.text]:
			opens++
		case (w.text == "abstract" || w.text == "primitive") &&
			i+1 < len(words) && words[i+1].text == "type":
			opens++
		}
	}
	return opens, ends
}

// assignIndex returns the offset of the first assignment "=" at bracket
// depth zero, or -1. Comparison and updating operators are skipped.
func assignIndex(clean string) int {
	depth := 0
	for i := 0; i < len(clean); i++ {
		switch clean[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(clean) && (clean[i+1] == '=' || clean[i+1] == '>') {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("=!<>:+-*/\\^%&|$~.÷", clean[i-1]) >= 0 {
				continue
			}
			return i
		}
	}
	return -1
}

// wordIndex returns the position of the first top-level occurrence of
// keyword in clean, or -1.
func wordIndex(clean, keyword string) int {
	for _, w := range topWords(clean) {
		if w.text == keyword {
			return w.pos
		}
	}
	return -1
}
