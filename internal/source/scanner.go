// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source reads Julia source files into declaration trees. It is a
// declaration scanner, not a Julia parser: it tracks blocks by their
// keywords and "end", hands every declaration header to sigparse, and
// skips everything else.
package source

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/go-jldoc/internal/sigparse"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// File is one scanned source file.
type File struct {
	Path        string
	Decls       []types.Declaration // Top-level declarations in source order
	Diagnostics []Diagnostic
}

// Diagnostic records a declaration header that could not be parsed. The
// declaration is skipped; the rest of the file is still scanned.
type Diagnostic struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"` // Header as written
	Err  error  `json:"-" yaml:"-"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d: %v", d.Path, d.Line, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

type frameKind int

const (
	frameModule frameKind = iota // Also the file's top level
	frameStruct
	frameBlock // Any other block; its contents are skipped
)

type frame struct {
	kind      frameKind
	module    *types.Module // nil for the top level
	composite *types.CompositeType
	depth     int // Outstanding "end"s of a block frame
}

type scanner struct {
	file    *File
	lx      *lexed
	frames  []*frame
	pending string // Docstring waiting for the next declaration
}

// Parse scans src, naming the result path.
func Parse(path string, src []byte) *File {
	s := &scanner{
		file:   &File{Path: path},
		lx:     lex(string(src)),
		frames: []*frame{{kind: frameModule}},
	}
	for _, st := range s.lx.statements() {
		s.statement(st)
	}
	return s.file
}

func (s *scanner) top() *frame {
	return s.frames[len(s.frames)-1]
}

func (s *scanner) statement(st statement) {
	words := topWords(st.clean)
	opens, ends := blockDelta(words)
	net := opens - ends

	if f := s.top(); f.kind == frameBlock {
		f.depth += net
		if f.depth <= 0 {
			extra := -f.depth
			s.frames = s.frames[:len(s.frames)-1]
			s.close(extra)
		}
		return
	}

	if doc, ok := s.docstring(st); ok {
		s.pending = doc
		return
	}
	doc := s.pending
	s.pending = ""

	if net < 0 {
		s.close(-net)
		return
	}

	pushed := s.declaration(st, doc, net)
	if net > 0 && !pushed {
		s.frames = append(s.frames, &frame{kind: frameBlock, depth: net})
	}
}

// close pops n frames for n "end" keywords. The top level is never popped.
func (s *scanner) close(n int) {
	for ; n > 0 && len(s.frames) > 1; n-- {
		f := s.top()
		if f.kind == frameBlock && f.depth > 1 {
			f.depth--
			continue
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// docstring reports whether the statement is a lone string literal and
// returns its dedented contents.
func (s *scanner) docstring(st statement) (string, bool) {
	end, ok := s.lx.strings[st.start]
	if !ok || end-st.start != len(st.code) {
		return "", false
	}
	raw := s.lx.src[st.start:end]
	q := 1
	if strings.HasPrefix(raw, `"""`) {
		q = 3
	} else if raw[0] != '"' {
		return "", false
	}
	if len(raw) < 2*q {
		return "", false
	}
	return dedent(raw[q : len(raw)-q]), true
}

// declaration handles a statement in module or struct context. It reports
// whether it pushed a frame.
func (s *scanner) declaration(st statement, doc string, net int) bool {
	code, clean := stripMacros(st.code, st.clean)
	first := ""
	if ws := topWords(clean); len(ws) > 0 && ws[0].pos == len(clean)-len(strings.TrimLeft(clean, " ")) {
		first = ws[0].text
	}

	switch first {
	case "module", "baremodule":
		m, err := sigparse.ParseModule(code)
		if err != nil {
			s.diagnose(st, code, err)
			return false
		}
		m.Docstring = doc
		s.add(m)
		if net > 0 {
			s.frames = append(s.frames, &frame{kind: frameModule, module: m})
			return true
		}
		return false

	case "abstract":
		a, err := sigparse.ParseAbstract(code)
		if err != nil {
			s.diagnose(st, code, err)
			return false
		}
		a.Docstring = doc
		s.add(a)
		return false

	case "struct", "mutable":
		c, err := sigparse.ParseComposite(code)
		if err != nil {
			s.diagnose(st, code, err)
			return false
		}
		c.Docstring = doc
		s.add(c)
		if net > 0 {
			s.frames = append(s.frames, &frame{kind: frameStruct, composite: c})
			return true
		}
		return false

	case "function":
		header := strings.TrimSpace(code)
		if net == 0 {
			header = strings.TrimSuffix(header, " end")
		}
		s.function(st, header, doc)
		return false

	case "macro", "primitive", "export", "public", "using", "import", "include":
		return false

	case "const":
		// Only struct fields can be const; module-level constants are
		// not declarations.
		if s.top().composite == nil {
			return false
		}
	}

	if header, ok := shortForm(code, clean); ok {
		s.function(st, header, doc)
		return false
	}

	if c := s.top().composite; c != nil {
		if f, ok := parseField(code); ok {
			c.Fields = append(c.Fields, f)
		}
	}
	return false
}

func (s *scanner) function(st statement, header, doc string) {
	fn, err := sigparse.ParseFunction(braceWhere(header))
	if err != nil {
		s.diagnose(st, header, err)
		return
	}
	fn.Docstring = doc
	if c := s.top().composite; c != nil {
		c.Constructors = append(c.Constructors, fn)
		return
	}
	s.add(fn)
}

func (s *scanner) add(decl types.Declaration) {
	if m := s.top().module; m != nil {
		m.Body = append(m.Body, decl)
		return
	}
	s.file.Decls = append(s.file.Decls, decl)
}

func (s *scanner) diagnose(st statement, text string, err error) {
	s.file.Diagnostics = append(s.file.Diagnostics, Diagnostic{
		Path: s.file.Path,
		Line: st.line,
		Text: strings.TrimSpace(text),
		Err:  err,
	})
}

// stripMacros drops leading macro calls such as "@inline" or
// "Base.@kwdef" from both views of a statement.
func stripMacros(code, clean string) (string, string) {
	for {
		trimmed := strings.TrimLeft(clean, " ")
		off := len(clean) - len(trimmed)
		at := strings.IndexByte(trimmed, '@')
		if at < 0 || strings.TrimRight(trimmed[:at], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_.") != "" {
			return code, clean
		}
		end := at + 1
		for end < len(trimmed) && (isIdentRune(rune(trimmed[end])) || trimmed[end] == '.') {
			end++
		}
		if end < len(trimmed) && trimmed[end] != ' ' {
			return code, clean
		}
		cut := off + end
		code, clean = code[cut:], clean[cut:]
	}
}

// shortForm reports whether the statement is a one-line method definition
// such as "f(x) = x + 1" and returns its header.
func shortForm(code, clean string) (string, bool) {
	eq := assignIndex(clean)
	if eq < 0 {
		return "", false
	}
	lhs := strings.TrimSpace(code[:eq])
	n := 0
	for n < len(lhs) && (isIdentRune(rune(lhs[n])) || lhs[n] == '.') {
		n++
	}
	if n == 0 || (lhs[0] >= '0' && lhs[0] <= '9') || n == len(lhs) {
		return "", false
	}
	if lhs[n] != '(' && lhs[n] != '{' {
		return "", false
	}
	return lhs, true
}

// parseField reads a struct field line "name", "name::T" or, in keyword
// structs, "name::T = default".
func parseField(code string) (types.Field, bool) {
	code = strings.TrimSpace(code)
	if rest, ok := strings.CutPrefix(code, "const "); ok {
		code = strings.TrimSpace(rest)
	}
	arg, err := sigparse.ParseArgument(code)
	if err != nil || arg.Name == "" || arg.Decorator != "" {
		return types.Field{}, false
	}
	for _, r := range arg.Name {
		if !isIdentRune(r) {
			return types.Field{}, false
		}
	}
	return types.Field{Name: arg.Name, Type: arg.Type, Default: arg.Default}, true
}

// braceWhere wraps a brace-less where clause, "where T<:Real", in braces;
// sigparse only accepts the braced form.
func braceWhere(header string) string {
	i := wordIndex(header, "where")
	if i < 0 {
		return header
	}
	rest := strings.TrimSpace(header[i+len("where"):])
	if rest == "" || rest[0] == '{' {
		return header
	}
	return header[:i] + "where {" + rest + "}"
}

// dedent strips the common indentation of a triple-quoted string and its
// leading newline.
func dedent(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "\r"), "\n")
	lines := strings.Split(s, "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, l := range lines {
			if len(l) >= indent {
				lines[i] = l[indent:]
			} else {
				lines[i] = strings.TrimLeft(l, " \t")
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}
