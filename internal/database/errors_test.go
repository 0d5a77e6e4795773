// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyConnectError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "access denied",
			err:  &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'u'@'h'"},
			want: ErrAccessDenied,
		},
		{
			name: "unknown database",
			err:  &mysql.MySQLError{Number: 1049, Message: "Unknown database 'assets'"},
			want: ErrUnknownDatabase,
		},
		{
			name: "other server error",
			err:  &mysql.MySQLError{Number: 1040, Message: "Too many connections"},
		},
		{
			name: "network error",
			err:  errors.New("dial tcp: connection refused"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := newConnectError("mysql", tc.err)
			assert.ErrorIs(t, err, tc.err)
			if tc.want == nil {
				assert.Nil(t, err.Kind)
				assert.NotErrorIs(t, err, ErrAccessDenied)
				assert.NotErrorIs(t, err, ErrUnknownDatabase)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConnectErrorMessage(t *testing.T) {
	t.Parallel()

	err := newConnectError("mysql", &mysql.MySQLError{Number: 1049, Message: "Unknown database 'assets'"})
	assert.Contains(t, err.Error(), "connect to mysql database")
	assert.Contains(t, err.Error(), ErrUnknownDatabase.Error())

	plain := newConnectError("sqlite", errors.New("unable to open database file"))
	assert.Equal(t, "connect to sqlite database: unable to open database file", plain.Error())
}

func TestQueryErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("syntax error")
	var err error = &QueryError{Op: "Raw", Query: "SELEC 1", Err: cause}

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "Raw: syntax error", err.Error())
}
