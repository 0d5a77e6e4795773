// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdag/dbconnector/internal/domain"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{input: "", want: zerolog.InfoLevel},
		{input: "INFO", want: zerolog.InfoLevel},
		{input: "debug", want: zerolog.DebugLevel},
		{input: "Trace", want: zerolog.TraceLevel},
		{input: "WARNING", want: zerolog.WarnLevel},
		{input: "ERROR", want: zerolog.ErrorLevel},
		{input: "verbose", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewConsoleRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&domain.Config{LogLevel: "INFO", LogConsole: true}, &buf)
	require.NoError(t, err)
	defer log.Close()

	log.Debug().Msg("hidden statement")
	log.Info().Msg("Connected to database successfully")

	assert.NotContains(t, buf.String(), "hidden statement")
	assert.Contains(t, buf.String(), "Connected to database successfully")
}

func TestNewWritesLogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "dbconnector.log")
	log, err := New(&domain.Config{LogLevel: "DEBUG", LogPath: path}, nil)
	require.NoError(t, err)

	log.Debug().Str("query", "SHOW TABLES").Msg("EXECUTING")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"query":"SHOW TABLES"`)
	assert.Contains(t, string(content), `"level":"debug"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(&domain.Config{LogLevel: "LOUD"}, nil)
	require.Error(t, err)
}

func TestCloseWithoutFile(t *testing.T) {
	t.Parallel()

	log, err := New(&domain.Config{}, nil)
	require.NoError(t, err)
	assert.NoError(t, log.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}

func TestConsoleColorOnlyOnTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.False(t, isTerminal(&buf))

	log, err := New(&domain.Config{LogLevel: "INFO", LogConsole: true}, &buf)
	require.NoError(t, err)
	log.Warn().Msg("plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}
