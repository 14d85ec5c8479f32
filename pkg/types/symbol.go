// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the declaration model shared across go-jldoc
// packages: arguments, signatures, the four declaration variants, scopes,
// and registry entries.
package types

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies the category of a Julia declaration.
type Kind int

const (
	KindModule    Kind = iota // module or baremodule
	KindAbstract              // abstract type
	KindComposite             // struct or mutable struct
	KindFunction              // function or method definition
)

// Kinds lists every declaration kind in registration order.
var Kinds = []Kind{KindModule, KindAbstract, KindComposite, KindFunction}

// String returns the name used for the kind in queries and output.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindAbstract:
		return "abstract"
	case KindComposite:
		return "type"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// MarshalText lets kinds appear by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a kind name back to its Kind. It accepts the names
// produced by String plus the common role aliases "mod", "func", "struct",
// and "class".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "module", "mod":
		return KindModule, nil
	case "abstract":
		return KindAbstract, nil
	case "type", "struct", "composite", "class":
		return KindComposite, nil
	case "function", "func":
		return KindFunction, nil
	default:
		return 0, errors.Newf("unknown declaration kind %q", s)
	}
}
