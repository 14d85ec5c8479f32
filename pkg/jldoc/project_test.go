// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package jldoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

const shapesJL = `module Shapes

export area

abstract type Shape end

"""
    Circle(r)

A circle of radius r.
"""
struct Circle <: Shape
    r::Float64
end

"Area of a circle."
area(c::Circle) = π * c.r^2
area(s::Shape, scale) = 0.0

module Inner
helper(x; verbose=false) = x
end

end
`

const utilJL = `clamp01(x::Real) = clamp(x, 0, 1)
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func newProject(t *testing.T, withDB bool) (*Project, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/Shapes.jl", shapesJL)
	writeFile(t, root, "src/util.jl", utilJL)

	cfg := Config{Root: root, Concurrency: 2}
	if withDB {
		cfg.DBPath = filepath.Join(t.TempDir(), "jldoc.db")
	}
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, root
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing root", Config{}},
		{"root does not exist", Config{Root: filepath.Join(t.TempDir(), "nope")}},
		{"negative concurrency", Config{Root: t.TempDir(), Concurrency: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestBuild(t *testing.T) {
	p, _ := newProject(t, false)
	res, err := p.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Documents)
	// Shapes, Shape, Circle, area x2, Inner, helper, clamp01.
	assert.Equal(t, 8, res.Entries)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.BuildID)
	assert.Equal(t, []string{"src/Shapes.jl", "src/util.jl"}, p.Documents())

	found, err := p.Find(types.KindFunction, types.Scope{"Shapes"}, ".area(c)")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Shapes.area", found[0].QualifiedID)
	assert.Equal(t, "src/Shapes.jl", found[0].Document)
}

func TestBuild_RereadsChangedFiles(t *testing.T) {
	p, root := newProject(t, false)
	ctx := context.Background()
	writeFile(t, root, "src/a.jl", "f(x) = x\n")
	_, err := p.Build(ctx)
	require.NoError(t, err)

	count := func(name string) int {
		found, err := p.Find(types.KindFunction, nil, name)
		require.NoError(t, err)
		return len(found)
	}
	require.Equal(t, 1, count("f"))

	writeFile(t, root, "src/a.jl", "g(x) = x\n")
	require.NoError(t, os.Remove(filepath.Join(root, "src", "util.jl")))
	res, err := p.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, count("f"))
	assert.Equal(t, 1, count("g"))
	assert.Equal(t, 0, count("clamp01"))
	assert.Equal(t, 2, res.Documents)
	assert.Equal(t, []string{"src/Shapes.jl", "src/a.jl"}, p.Documents())
	assert.Equal(t, 2, p.cache.Len())
}

func TestRebuild_SkipsExcludedPaths(t *testing.T) {
	p, root := newProject(t, false)
	ctx := context.Background()
	writeFile(t, root, ".gitignore", "gen/\n")
	_, err := p.Build(ctx)
	require.NoError(t, err)
	before := p.Documents()

	for _, rel := range []string{"deps/build.jl", "gen/out.jl", "node_modules/m.jl", ".hidden/h.jl"} {
		writeFile(t, root, rel, "generated() = 1\n")
		res, err := p.Rebuild(ctx, rel)
		require.NoError(t, err, rel)
		assert.Equal(t, 0, res.Entries, rel)
	}
	assert.Equal(t, before, p.Documents())

	found, err := p.Find(types.KindFunction, nil, "generated")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestResolve(t *testing.T) {
	p, _ := newProject(t, false)
	_, err := p.Build(context.Background())
	require.NoError(t, err)

	res, err := p.Resolve(types.KindFunction, types.Scope{"Shapes", "Inner"}, "~..area(s, scale)")
	require.NoError(t, err)
	assert.Equal(t, Resolved, res.Status)
	assert.Equal(t, "area(s, scale)", res.Role.Title)

	res, err = p.Resolve(types.KindFunction, nil, "Shapes.area")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, res.Status)

	res, err = p.Resolve(types.KindComposite, nil, "Square")
	require.NoError(t, err)
	assert.Equal(t, Unresolved, res.Status)
}

func TestRebuild(t *testing.T) {
	p, root := newProject(t, true)
	ctx := context.Background()
	first, err := p.Build(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first.BuildID)

	writeFile(t, root, "src/util.jl", "clamp01(x::Real) = clamp(x, 0, 1)\nlerp(a, b, t) = a + t*(b - a)\n")
	res, err := p.Rebuild(ctx, "src/util.jl")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, first.BuildID, res.BuildID)

	found, err := p.Find(types.KindFunction, nil, "lerp")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// Other documents keep their entries.
	found, err = p.Find(types.KindModule, nil, "Shapes")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Len(t, p.Snapshot(), 9)

	// The snapshot database follows the rebuild.
	restored, err := New(Config{Root: root, DBPath: p.cfg.DBPath})
	require.NoError(t, err)
	defer restored.Close()
	b, err := restored.Restore(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, first.BuildID, b.ID)
	assert.Equal(t, p.Snapshot(), restored.Snapshot())

	require.NoError(t, os.Remove(filepath.Join(root, "src", "util.jl")))
	res, err = p.Rebuild(ctx, filepath.Join(root, "src", "util.jl"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entries)
	assert.Equal(t, []string{"src/Shapes.jl"}, p.Documents())
}

func TestRestore_UnknownBuild(t *testing.T) {
	p, root := newProject(t, true)
	ctx := context.Background()
	built, err := p.Build(ctx)
	require.NoError(t, err)

	_, err = p.Restore(ctx, "no-such-build")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuildNotFound))
	assert.Len(t, p.Snapshot(), built.Entries, "registry is kept")

	b, err := p.Restore(ctx, built.BuildID)
	require.NoError(t, err)
	assert.Equal(t, root, b.Root)
	assert.False(t, b.CreatedAt.IsZero())
	assert.Equal(t, built.Entries, b.Entries)
}

func TestRestore_NoStore(t *testing.T) {
	p, _ := newProject(t, false)
	_, err := p.Restore(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoStore))
	_, err = p.Builds(context.Background())
	assert.True(t, errors.Is(err, ErrNoStore))
}

func TestOutline(t *testing.T) {
	p, _ := newProject(t, false)
	_, err := p.Build(context.Background())
	require.NoError(t, err)

	items, err := p.Outline("src/Shapes.jl")
	require.NoError(t, err)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.QualifiedID)
	}
	assert.Equal(t, []string{
		"Shapes", "Shapes.Shape", "Shapes.Circle",
		"Shapes.area", "Shapes.area", "Shapes.Inner", "Shapes.Inner.helper",
	}, ids)
	assert.Equal(t, 0, items[0].Depth)
	assert.Equal(t, 2, items[6].Depth)
	assert.Equal(t, "A circle of radius r.", items[2].Summary)
	assert.Equal(t, "Area of a circle.", items[3].Summary)
	assert.Equal(t, "function area(c::Circle)", items[3].Header)
	assert.Equal(t, "module Shapes", items[0].Header)

	all, err := p.Outline("")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	_, err = p.Outline("missing.jl")
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	p, _ := newProject(t, false)
	_, err := p.Build(context.Background())
	require.NoError(t, err)

	got, err := p.Select(types.KindFunction, "area(s, scale)")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shape", got[0].(*types.Function).Signature.Positional[0].Type)

	_, err = p.Select(types.KindFunction, "area(")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	p, root := newProject(t, false)
	p.cfg.Debounce = 50 * time.Millisecond
	_, err := p.Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(root, "src", "extra.jl"), []byte("extra() = 1\n"), 0o644)
		found, err := p.Find(types.KindFunction, nil, "extra")
		return err == nil && len(found) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
