// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-jldoc/pkg/types"
)

func TestPrintOutput(t *testing.T) {
	entry := types.Entry{Kind: types.KindFunction, Name: "area", QualifiedID: "Shapes.area"}
	text := func(w io.Writer) error {
		_, err := fmt.Fprintln(w, entry.QualifiedID)
		return err
	}

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"Shapes.area\n"}},
		{"", []string{"Shapes.area\n"}},
		{"json", []string{`"kind": "function"`, `"qualified_id": "Shapes.area"`}},
		{"JSON", []string{`"name": "area"`}},
		{"yaml", []string{"kind: function\n", "qualified_id: Shapes.area\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printOutput(&buf, tt.format, entry, text))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := printOutput(&buf, "xml", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml"`)
	assert.Empty(t, buf.String())
}
