// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSchemaColumn(t *testing.T) {
	t.Parallel()

	schema := &tableSchema{
		name:       "cameras",
		columns:    []string{"cameraID", "cameraName", "vendor", "megapixels"},
		primaryKey: "cameraID",
	}

	tests := []struct {
		name       string
		input      string
		want       string
		suggestion string
	}{
		{name: "exact", input: "cameraName", want: "cameraName"},
		{name: "case insensitive", input: "VENDOR", want: "vendor"},
		{name: "subsequence suggestion", input: "camName", suggestion: `did you mean "cameraName"`},
		{name: "typo suggestion", input: "vendro", suggestion: `did you mean "vendor"`},
		{name: "no suggestion", input: "thumbnail_url_large"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := schema.column(tc.input)
			if tc.want != "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}

			require.ErrorIs(t, err, ErrUnknownColumn)
			if tc.suggestion != "" {
				assert.Contains(t, err.Error(), tc.suggestion)
			} else {
				assert.NotContains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestTableSchemaPrimaryKey(t *testing.T) {
	t.Parallel()

	pk, err := (&tableSchema{name: "shows", columns: []string{"showID"}, primaryKey: "showID"}).pk()
	require.NoError(t, err)
	assert.Equal(t, "showID", pk)

	_, err = (&tableSchema{name: "tags", columns: []string{"name"}}).pk()
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}
