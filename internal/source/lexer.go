// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package source

import (
	"strings"
	"unicode/utf8"
)

// lexed holds two views of a source file, both the same length as the
// source so offsets line up: code has comments blanked, clean additionally
// has string and character literal contents blanked. Newlines survive in
// both. Structure is read from clean; declaration headers are cut from code.
type lexed struct {
	src     string
	code    []byte
	clean   []byte
	strings map[int]int // Opening quote offset to offset just past the closing quote
}

func lex(src string) *lexed {
	lx := &lexed{
		src:     src,
		code:    []byte(src),
		clean:   []byte(src),
		strings: make(map[int]int),
	}

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "#="):
			i = lx.blockComment(i)
		case src[i] == '#':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			lx.blank(i, i+end, true)
			i += end
		case strings.HasPrefix(src[i:], `"""`):
			i = lx.stringLit(i, `"""`)
		case src[i] == '"':
			i = lx.stringLit(i, `"`)
		case src[i] == '`':
			i = lx.stringLit(i, "`")
		case src[i] == '\'' && !isTranspose(src, i):
			i = lx.charLit(i)
		default:
			i++
		}
	}
	return lx
}

// blank replaces bytes in [from, to) with spaces, keeping newlines. When
// code is set the code view is blanked too.
func (lx *lexed) blank(from, to int, code bool) {
	for i := from; i < to && i < len(lx.clean); i++ {
		if lx.clean[i] == '\n' {
			continue
		}
		lx.clean[i] = ' '
		if code {
			lx.code[i] = ' '
		}
	}
}

// blockComment skips a possibly nested #= ... =# comment.
func (lx *lexed) blockComment(start int) int {
	depth := 0
	i := start
	for i < len(lx.src) {
		switch {
		case strings.HasPrefix(lx.src[i:], "#="):
			depth++
			i += 2
		case strings.HasPrefix(lx.src[i:], "=#"):
			depth--
			i += 2
			if depth == 0 {
				lx.blank(start, i, true)
				return i
			}
		default:
			i++
		}
	}
	lx.blank(start, i, true)
	return i
}

func (lx *lexed) stringLit(start int, quote string) int {
	i := start + len(quote)
	for i < len(lx.src) {
		if lx.src[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(lx.src[i:], quote) {
			end := i + len(quote)
			lx.blank(start+len(quote), i, false)
			lx.strings[start] = end
			return end
		}
		i++
	}
	lx.blank(start+len(quote), len(lx.src), false)
	lx.strings[start] = len(lx.src)
	return len(lx.src)
}

func (lx *lexed) charLit(start int) int {
	i := start + 1
	for i < len(lx.src) && lx.src[i] != '\n' {
		if lx.src[i] == '\\' {
			i += 2
			continue
		}
		if lx.src[i] == '\'' {
			lx.blank(start+1, i, false)
			return i + 1
		}
		i++
	}
	// Not a character literal after all.
	return start + 1
}

// isTranspose reports whether the quote at i is the adjoint operator
// rather than the start of a character literal.
func isTranspose(src string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(src[:i])
	switch r {
	case ')', ']', '}', '\'', '.':
		return true
	}
	return isIdentRune(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '!' || r >= utf8.RuneSelf ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// line is a physical line of the lexed source.
type line struct {
	no    int // 1-based
	start int // Offset of the first byte
	end   int // Offset of the terminating newline or len(src)
}

func (lx *lexed) lines() []line {
	var out []line
	start := 0
	for no := 1; start <= len(lx.src); no++ {
		end := strings.IndexByte(lx.src[start:], '\n')
		if end < 0 {
			out = append(out, line{no: no, start: start, end: len(lx.src)})
			break
		}
		out = append(out, line{no: no, start: start, end: start + end})
		start += end + 1
	}
	return out
}
