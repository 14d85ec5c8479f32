// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

func TestFindClosing(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		want  int
	}{
		{name: "simple", text: "(a)", start: 0, want: 2},
		{name: "nested", text: "f(a, (b, c))", start: 1, want: 11},
		{name: "braces", text: "Dict{K,V}", start: 4, want: 8},
		{name: "wrong kind closer ignored", text: "(a]b)", start: 0, want: 4},
		{name: "unclosed", text: "(a, b", start: 0, want: -1},
		{name: "not a bracket", text: "abc", start: 1, want: -1},
		{name: "out of range", text: "()", start: 5, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindClosing(tt.text, tt.start))
		})
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Argument
	}{
		{name: "bare name", text: "x", want: types.Argument{Name: "x"}},
		{name: "typed", text: "x::Int", want: types.Argument{Name: "x", Type: "Int"}},
		{name: "typed with default", text: "x::Int=3", want: types.Argument{Name: "x", Type: "Int", Default: "3"}},
		{name: "spaced default", text: " x = 3 ", want: types.Argument{Name: "x", Default: "3"}},
		{name: "bracketed type and default", text: "v::Vector{T}=T[]", want: types.Argument{Name: "v", Type: "Vector{T}", Default: "T[]"}},
		{
			name: "comparison inside default",
			text: "f::Function=(a, b) -> a == b",
			want: types.Argument{Name: "f", Type: "Function", Default: "(a, b) -> a == b"},
		},
		{name: "pair default", text: "p::Pair=a=>b", want: types.Argument{Name: "p", Type: "Pair", Default: "a=>b"}},
		{name: "anonymous typed", text: "::Type{T}", want: types.Argument{Type: "Type{T}"}},
		{name: "bang name with spaced default", text: "f! = nothing", want: types.Argument{Name: "f!", Default: "nothing"}},
		{name: "macro call form", text: "@nospecialize(f)", want: types.Argument{Name: "f", Decorator: "@nospecialize"}},
		{
			name: "macro prefix form",
			text: "@nospecialize x::Any",
			want: types.Argument{Name: "x", Type: "Any", Decorator: "@nospecialize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgument(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgumentList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Signature
	}{
		{name: "empty", text: "", want: types.Signature{}},
		{name: "whitespace", text: "   ", want: types.Signature{}},
		{
			name: "positional",
			text: "a, b",
			want: types.Signature{Positional: []types.Argument{{Name: "a"}, {Name: "b"}}},
		},
		{
			name: "all slots",
			text: "a, b=2; c, d::Int=1",
			want: types.Signature{
				Positional: []types.Argument{{Name: "a"}},
				Optional:   []types.Argument{{Name: "b", Default: "2"}},
				Keyword:    []types.Argument{{Name: "c"}, {Name: "d", Type: "Int", Default: "1"}},
			},
		},
		{
			name: "varargs",
			text: "x, xs...; kw...",
			want: types.Signature{
				Positional: []types.Argument{{Name: "x"}},
				Vararg:     &types.Argument{Name: "xs"},
				KwVararg:   &types.Argument{Name: "kw"},
			},
		},
		{
			name: "commas nested in brackets",
			text: "x::Dict{K,V}, y::Tuple{Int, Int}=(1, 2)",
			want: types.Signature{
				Positional: []types.Argument{{Name: "x", Type: "Dict{K,V}"}},
				Optional:   []types.Argument{{Name: "y", Type: "Tuple{Int, Int}", Default: "(1, 2)"}},
			},
		},
		{
			name: "keywords only",
			text: "; verbose::Bool=false",
			want: types.Signature{
				Keyword: []types.Argument{{Name: "verbose", Type: "Bool", Default: "false"}},
			},
		},
		{
			name: "trailing comma",
			text: "a,",
			want: types.Signature{Positional: []types.Argument{{Name: "a"}}},
		},
		{
			name: "trailing semicolon",
			text: "a;",
			want: types.Signature{Positional: []types.Argument{{Name: "a"}}},
		},
		{
			name: "typed vararg",
			text: "args::Int...",
			want: types.Signature{Vararg: &types.Argument{Name: "args", Type: "Int"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgumentList(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgumentList_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unclosed paren", text: "a, (b, c"},
		{name: "stray closer", text: "a)"},
		{name: "unclosed brace", text: "x::Vector{T"},
		{name: "empty middle argument", text: "a,,b"},
		{name: "two varargs", text: "a..., b..."},
		{name: "two keyword varargs", text: "; a..., b..."},
		{name: "two semicolons", text: "a; b; c"},
		{name: "default without name", text: "=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgumentList(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSignature), "got %v", err)
		})
	}
}

func TestParseFunction(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *types.Function
	}{
		{name: "bare name", text: "f", want: &types.Function{Name: "f"}},
		{
			name: "with arguments",
			text: "f(x)",
			want: &types.Function{Name: "f", Signature: types.Signature{
				Positional: []types.Argument{{Name: "x"}},
			}},
		},
		{
			name: "qualified",
			text: "Base.show(io::IO, x)",
			want: &types.Function{Name: "show", OwningModule: "Base", Signature: types.Signature{
				Positional: []types.Argument{{Name: "io", Type: "IO"}, {Name: "x"}},
			}},
		},
		{
			name: "nested qualifier",
			text: "A.B.f()",
			want: &types.Function{Name: "f", OwningModule: "A.B"},
		},
		{
			name: "brace templates",
			text: "f{T,S}(x::T, y::S)",
			want: &types.Function{Name: "f", TemplateParameters: []string{"T", "S"}, Signature: types.Signature{
				Positional: []types.Argument{{Name: "x", Type: "T"}, {Name: "y", Type: "S"}},
			}},
		},
		{
			name: "where clause",
			text: "f(x::T) where {T<:Real}",
			want: &types.Function{Name: "f", TemplateParameters: []string{"T<:Real"}, Signature: types.Signature{
				Positional: []types.Argument{{Name: "x", Type: "T"}},
			}},
		},
		{
			name: "arrow inside a default is not a return type",
			text: "apply(g=x -> x)::Int",
			want: &types.Function{Name: "apply", ReturnType: "Int", Signature: types.Signature{
				Optional: []types.Argument{{Name: "g", Default: "x -> x"}},
			}},
		},
		{
			name: "typed brace parameter is not a return type",
			text: "f{T::Int}(x)",
			want: &types.Function{Name: "f", TemplateParameters: []string{"T::Int"}, Signature: types.Signature{
				Positional: []types.Argument{{Name: "x"}},
			}},
		},
		{
			name: "return type",
			text: "f(x)::Int",
			want: &types.Function{Name: "f", ReturnType: "Int", Signature: types.Signature{
				Positional: []types.Argument{{Name: "x"}},
			}},
		},
		{
			name: "arrow return type",
			text: "f(x) -> Vector{Int}",
			want: &types.Function{Name: "f", ReturnType: "Vector{Int}", Signature: types.Signature{
				Positional: []types.Argument{{Name: "x"}},
			}},
		},
		{
			name: "return type and where clause",
			text: "f(x::T)::T where {T}",
			want: &types.Function{Name: "f", ReturnType: "T", TemplateParameters: []string{"T"}, Signature: types.Signature{
				Positional: []types.Argument{{Name: "x", Type: "T"}},
			}},
		},
		{
			name: "function keyword and keywords",
			text: "function solve(p; tol=1e-8)",
			want: &types.Function{Name: "solve", Signature: types.Signature{
				Positional: []types.Argument{{Name: "p"}},
				Keyword:    []types.Argument{{Name: "tol", Default: "1e-8"}},
			}},
		},
		{
			name: "where without arguments",
			text: "f where {T}",
			want: &types.Function{Name: "f", TemplateParameters: []string{"T"}},
		},
		{
			name: "arrow inside default is not a return type",
			text: "map(f=x -> x, xs)",
			want: &types.Function{Name: "map", Signature: types.Signature{
				Positional: []types.Argument{{Name: "xs"}},
				Optional:   []types.Argument{{Name: "f", Default: "x -> x"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFunction(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFunction_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unbalanced parenthesis", text: "f(a, b"},
		{name: "where without braces", text: "f(x) where T"},
		{name: "unbalanced where group", text: "f(x) where {T"},
		{name: "brace templates and where", text: "f{T}(x::T) where {T}"},
		{name: "trailing junk", text: "f(x) g"},
		{name: "empty", text: ""},
		{name: "qualifier without name", text: "A.(x)"},
		{name: "empty return type", text: "f(x)::"},
		{name: "bad argument list", text: "f(a,,b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFunction(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSignature), "got %v", err)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Declaration
	}{
		{name: "bare", text: "Point", want: &types.CompositeType{Name: "Point"}},
		{name: "templated", text: "Point{T}", want: &types.CompositeType{Name: "Point", TemplateParameters: []string{"T"}}},
		{
			name: "templated with parent",
			text: "Point{T} <: AbstractPoint{T}",
			want: &types.CompositeType{Name: "Point", TemplateParameters: []string{"T"}, ParentType: "AbstractPoint{T}"},
		},
		{
			name: "mutable with bounded parameter",
			text: "mutable struct Node{T<:Real} <: AbstractNode",
			want: &types.CompositeType{
				Name:               "Node",
				TemplateParameters: []string{"T<:Real"},
				ParentType:         "AbstractNode",
				Mutable:            true,
			},
		},
		{name: "struct keyword", text: "struct Circle <: Shape", want: &types.CompositeType{Name: "Circle", ParentType: "Shape"}},
		{name: "abstract one line", text: "abstract type Shape end", want: &types.AbstractType{Name: "Shape"}},
		{
			name: "abstract with parent",
			text: "abstract type Shape{N} <: Any end",
			want: &types.AbstractType{Name: "Shape", TemplateParameters: []string{"N"}, ParentType: "Any"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType_Malformed(t *testing.T) {
	for _, text := range []string{"Point{T", "Point{T}x", "", "A.B", "Point <:"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseType(text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSignature), "got %v", err)
		})
	}
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule("module Shapes")
	require.NoError(t, err)
	assert.Equal(t, &types.Module{Name: "Shapes"}, m)

	m, err = ParseModule("baremodule Core2")
	require.NoError(t, err)
	assert.Equal(t, &types.Module{Name: "Core2", Bare: true}, m)

	_, err = ParseModule("module A.B")
	assert.True(t, errors.Is(err, ErrMalformedSignature))
}

func TestParse_DispatchesOnKind(t *testing.T) {
	tests := []struct {
		kind types.Kind
		text string
		want types.Kind
	}{
		{kind: types.KindModule, text: "Shapes", want: types.KindModule},
		{kind: types.KindAbstract, text: "Shape", want: types.KindAbstract},
		{kind: types.KindComposite, text: "Circle <: Shape", want: types.KindComposite},
		{kind: types.KindFunction, text: "area(c::Circle)", want: types.KindFunction},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			d, err := Parse(tt.kind, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Kind())
		})
	}

	_, err := Parse(types.Kind(99), "x")
	assert.Error(t, err)
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{
		"Base.show(io::IO, x::T; compact::Bool=false, kw...)::Nothing where {T}",
		"f{T}(xs::Vector{T}, n=length(xs), rest...)",
		"g",
	}
	for _, text := range inputs {
		a, err := ParseFunction(text)
		require.NoError(t, err)
		b, err := ParseFunction(text)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.NotSame(t, a, b)
	}
}

func TestFormatArgument(t *testing.T) {
	tests := []struct {
		arg  types.Argument
		want string
	}{
		{arg: types.Argument{Name: "x", Type: "Int", Default: "1"}, want: "x::Int=1"},
		{arg: types.Argument{Name: "f!", Default: "nothing"}, want: "f! = nothing"},
		{arg: types.Argument{Name: "f!", Type: "Int", Default: "0"}, want: "f!::Int=0"},
		{arg: types.Argument{Name: "op", Default: ">(1)"}, want: "op = >(1)"},
		{arg: types.Argument{Name: "eq", Default: "==(0)"}, want: "eq = ==(0)"},
		{arg: types.Argument{Name: "x", Decorator: "@nospecialize"}, want: "@nospecialize x"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			text := FormatArgument(tt.arg)
			assert.Equal(t, tt.want, text)

			back, err := ParseArgument(text)
			require.NoError(t, err)
			assert.Equal(t, tt.arg, back)
		})
	}
}

func TestFormatFunction_ParsesBack(t *testing.T) {
	fn := &types.Function{
		Name:               "show",
		OwningModule:       "Base",
		TemplateParameters: []string{"T"},
		ReturnType:         "Nothing",
		Signature: types.Signature{
			Positional: []types.Argument{{Name: "io", Type: "IO"}, {Name: "x", Type: "T"}},
			Keyword:    []types.Argument{{Name: "compact", Type: "Bool", Default: "false"}},
		},
	}

	text := FormatFunction(fn)
	assert.Equal(t, "Base.show(io::IO, x::T; compact::Bool=false)::Nothing where {T}", text)

	back, err := ParseFunction(text)
	require.NoError(t, err)
	assert.Equal(t, fn, back)
}

func TestFormatDeclaration(t *testing.T) {
	tests := []struct {
		decl types.Declaration
		want string
	}{
		{decl: &types.Module{Name: "Shapes"}, want: "module Shapes"},
		{decl: &types.AbstractType{Name: "Shape", ParentType: "Any"}, want: "abstract type Shape <: Any"},
		{decl: &types.CompositeType{Name: "Box", TemplateParameters: []string{"T"}, Mutable: true}, want: "mutable struct Box{T}"},
		{decl: &types.Function{Name: "area"}, want: "function area()"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDeclaration(tt.decl))
		})
	}
}

// randomSignature builds a signature whose slots are consistent with how
// ParseArgumentList assigns arguments: positionals never carry defaults and
// optionals always do.
func randomSignature(r *rand.Rand) types.Signature {
	names := []string{"x", "y", "io", "data", "n", "f!", "α"}
	typeNames := []string{"", "Int", "Vector{T}", "Dict{K,V}", "Tuple{Int, Float64}", "AbstractString"}
	defaults := []string{"1", "nothing", "T[]", "(1, 2)", "\"s\"", "x -> x"}

	pick := func(xs []string) string { return xs[r.Intn(len(xs))] }

	var sig types.Signature
	for i := r.Intn(4); i > 0; i-- {
		a := types.Argument{Name: pick(names), Type: pick(typeNames)}
		if r.Intn(5) == 0 {
			a.Decorator = "@nospecialize"
		}
		sig.Positional = append(sig.Positional, a)
	}
	for i := r.Intn(3); i > 0; i-- {
		sig.Optional = append(sig.Optional, types.Argument{Name: pick(names), Type: pick(typeNames), Default: pick(defaults)})
	}
	for i := r.Intn(3); i > 0; i-- {
		a := types.Argument{Name: pick(names), Type: pick(typeNames)}
		if r.Intn(2) == 0 {
			a.Default = pick(defaults)
		}
		sig.Keyword = append(sig.Keyword, a)
	}
	if r.Intn(3) == 0 {
		sig.Vararg = &types.Argument{Name: "args", Type: pick(typeNames)}
	}
	if r.Intn(3) == 0 {
		sig.KwVararg = &types.Argument{Name: "kwargs"}
	}
	return sig
}

func TestFormatSignature_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		sig := randomSignature(r)
		text := FormatSignature(sig)

		back, err := ParseArgumentList(text)
		require.NoError(t, err, "text: %q", text)
		assert.Equal(t, sig.Positional, back.Positional, "text: %q", text)
		assert.Equal(t, sig.Optional, back.Optional, "text: %q", text)
		assert.Equal(t, sig.Keyword, back.Keyword, "text: %q", text)
		assert.Equal(t, sig.Vararg != nil, back.Vararg != nil, "text: %q", text)
		assert.Equal(t, sig.KwVararg != nil, back.KwVararg != nil, "text: %q", text)
	}
}
