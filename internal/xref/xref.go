// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package xref turns cross-reference roles written in documentation into
// registry lookups and applies the warning policy for unresolved and
// ambiguous references.
package xref

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/logging"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// Role is the parsed content of a reference role such as
// "Area of a circle <Shapes.area>" or "~Shapes.area".
type Role struct {
	Title         string // Text shown for the link
	Target        string // Reference handed to the registry
	ExplicitTitle bool   // Written as "title <target>"
}

// ParseRole splits role text into a title and a target.
//
// With an explicit "title <target>" both parts are taken verbatim. Without
// one the target is the text minus a leading "~", and the title is the text
// minus its leading dots; a leading "~" shortens the title to the last
// component of the name.
func ParseRole(text string) Role {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, ">") {
		if open := strings.LastIndex(text, "<"); open > 0 {
			title := strings.TrimSpace(text[:open])
			target := strings.TrimSpace(text[open+1 : len(text)-1])
			if title != "" && target != "" {
				return Role{Title: title, Target: target, ExplicitTitle: true}
			}
		}
	}

	target := strings.TrimPrefix(text, "~")
	title := strings.TrimLeft(text, ".")
	if rest, ok := strings.CutPrefix(title, "~"); ok {
		title = lastComponent(strings.TrimLeft(rest, "."))
	}
	return Role{Title: title, Target: target}
}

// lastComponent drops the dotted qualifier of the name part of s. Dots
// inside an argument list or template group are left alone.
func lastComponent(s string) string {
	name := s
	if i := strings.IndexAny(s, "({"); i >= 0 {
		name = s[:i]
	}
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		return s[dot+1:]
	}
	return s
}

// Status classifies the outcome of a resolution.
type Status int

const (
	Unresolved Status = iota // No entry matched
	Resolved                 // Exactly one entry matched
	Ambiguous                // Several entries matched; the first is used
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// MarshalText lets statuses appear by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolution is the outcome of resolving one role.
type Resolution struct {
	Role       Role          `json:"role" yaml:"role"`
	Kind       types.Kind    `json:"kind" yaml:"kind"`
	Status     Status        `json:"status" yaml:"status"`
	Entry      *types.Entry  `json:"entry,omitempty" yaml:"entry,omitempty"` // Link target, nil when unresolved
	Candidates []types.Entry `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// Finder is the lookup a Resolver needs; *registry.Registry satisfies it.
type Finder interface {
	Find(kind types.Kind, current types.Scope, target string) ([]types.Entry, error)
}

// Resolver resolves roles against a Finder and logs a warning for every
// reference that does not resolve to exactly one entry.
type Resolver struct {
	finder Finder
	log    *zap.Logger
}

// NewResolver returns a resolver. A nil logger disables warnings.
func NewResolver(finder Finder, log *zap.Logger) *Resolver {
	return &Resolver{finder: finder, log: logging.OrNop(log)}
}

// Resolve resolves the role text of the given kind written inside scope.
//
// An unresolved reference is not an error: it is reported with a warning
// and the caller renders it as plain text. An ambiguous one links to the
// first match. A malformed function target is returned as an error.
func (r *Resolver) Resolve(kind types.Kind, scope types.Scope, text string) (Resolution, error) {
	role := ParseRole(text)
	res := Resolution{Role: role, Kind: kind}

	matches, err := r.finder.Find(kind, scope, role.Target)
	if err != nil {
		return res, errors.Wrapf(err, "resolving %s reference %q", kind, role.Target)
	}
	res.Candidates = matches

	switch len(matches) {
	case 0:
		res.Status = Unresolved
		r.log.Warn("unresolved reference",
			zap.Stringer("kind", kind),
			zap.String("target", role.Target),
			zap.Stringer("scope", scope))
	case 1:
		res.Status = Resolved
		res.Entry = &matches[0]
	default:
		res.Status = Ambiguous
		res.Entry = &matches[0]
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.QualifiedID
		}
		r.log.Warn("ambiguous reference",
			zap.Stringer("kind", kind),
			zap.String("target", role.Target),
			zap.Stringer("scope", scope),
			zap.Strings("candidates", ids),
			zap.String("using", matches[0].Anchor))
	}
	return res, nil
}
