// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jldoc is the public interface of go-jldoc: it indexes the Julia
// declarations of a source tree and resolves documentation
// cross-references against them.
package jldoc

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/source"
	"github.com/petar-djukic/go-jldoc/internal/store"
	"github.com/petar-djukic/go-jldoc/internal/xref"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Error types for the Project API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoStore       = errors.New("no snapshot database configured")
	ErrBuildNotFound = store.ErrNotFound
)

// Config configures a Project.
type Config struct {
	Root        string        // Source directory (required)
	DBPath      string        // SQLite snapshot database (empty = no persistence)
	Concurrency int           // Parallel file scans (default runtime.NumCPU)
	Debounce    time.Duration // Quiet period before a watched change is rebuilt (default 300ms)
	Logger      *zap.Logger   // Defaults to a no-op logger
}

// Re-exported result types.
type (
	Diagnostic = source.Diagnostic
	Resolution = xref.Resolution
	Build      = store.Build
)

// Resolution statuses.
const (
	Unresolved = xref.Unresolved
	Resolved   = xref.Resolved
	Ambiguous  = xref.Ambiguous
)

// BuildResult summarises a full build or a single-document rebuild.
type BuildResult struct {
	BuildID     string       `json:"build_id,omitempty" yaml:"build_id,omitempty"` // Empty without a database
	Documents   int          `json:"documents" yaml:"documents"`
	Entries     int          `json:"entries" yaml:"entries"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// OutlineItem is one line of a document outline.
type OutlineItem struct {
	Document    string     `json:"document" yaml:"document"`
	Kind        types.Kind `json:"kind" yaml:"kind"`
	QualifiedID string     `json:"qualified_id" yaml:"qualified_id"`
	Header      string     `json:"header" yaml:"header"` // Reformatted source, keyword included
	Depth       int        `json:"depth" yaml:"depth"`   // Nesting below the document's top level
	Summary     string     `json:"summary,omitempty" yaml:"summary,omitempty"`
}
