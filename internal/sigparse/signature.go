// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sigparse

import (
	"strings"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// ParseArgumentList parses the text between a function's parentheses.
//
// Top-level commas separate arguments and a top-level ";" starts the
// keyword arguments. A token ending in "..." fills the vararg slot of its
// half. Positional arguments with a default value go to Optional. An empty
// input yields an empty signature.
func ParseArgumentList(text string) (types.Signature, error) {
	var sig types.Signature
	text = strings.TrimSpace(text)
	if text == "" {
		return sig, nil
	}
	if err := checkBalanced(text); err != nil {
		return sig, err
	}

	var positional, keyword []string
	var semicolons int
	start := 0
	err := scanTopLevel(text, func(i int) bool {
		switch text[i] {
		case ',':
			if semicolons == 0 {
				positional = append(positional, text[start:i])
			} else {
				keyword = append(keyword, text[start:i])
			}
			start = i + 1
		case ';':
			if semicolons == 0 {
				positional = append(positional, text[start:i])
			}
			semicolons++
			start = i + 1
		}
		return true
	})
	if err != nil {
		return sig, err
	}
	if semicolons > 1 {
		return sig, malformed(text, "more than one ';' in argument list")
	}
	if semicolons == 0 {
		positional = append(positional, text[start:])
	} else {
		keyword = append(keyword, text[start:])
	}

	if err := fillHalf(text, &sig, positional, false); err != nil {
		return sig, err
	}
	if err := fillHalf(text, &sig, keyword, true); err != nil {
		return sig, err
	}
	return sig, nil
}

// fillHalf parses the tokens of one half of the argument list into sig.
// A trailing empty token ("a," or "a;") is dropped; any other empty token
// is an error.
func fillHalf(input string, sig *types.Signature, tokens []string, keyword bool) error {
	if n := len(tokens); n > 0 && strings.TrimSpace(tokens[n-1]) == "" {
		tokens = tokens[:n-1]
	}

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return malformed(input, "empty argument")
		}

		if strings.HasSuffix(tok, varargMarker) {
			arg, err := ParseArgument(strings.TrimSuffix(tok, varargMarker))
			if err != nil {
				return err
			}
			slot := &sig.Vararg
			if keyword {
				slot = &sig.KwVararg
			}
			if *slot != nil {
				return malformed(input, "more than one vararg in %s arguments", halfName(keyword))
			}
			*slot = &arg
			continue
		}

		arg, err := ParseArgument(tok)
		if err != nil {
			return err
		}
		if arg.Name == "" && arg.Type == "" {
			return malformed(input, "argument %q has neither name nor type", tok)
		}
		switch {
		case keyword:
			sig.Keyword = append(sig.Keyword, arg)
		case arg.Default != "":
			sig.Optional = append(sig.Optional, arg)
		default:
			sig.Positional = append(sig.Positional, arg)
		}
	}
	return nil
}

func halfName(keyword bool) string {
	if keyword {
		return "keyword"
	}
	return "positional"
}
