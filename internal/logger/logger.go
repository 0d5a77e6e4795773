// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logger builds the zerolog logger shared by the CLI and the
// database facade.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tmdag/dbconnector/internal/domain"
)

const (
	defaultMaxSize    = 50
	defaultMaxBackups = 3
)

// Logger is a zerolog.Logger that owns its rotating log file, if any.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// New returns a logger at cfg's level writing to console (when enabled) and
// to cfg.LogPath with size based rotation.
func New(cfg *domain.Config, console io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var writers []io.Writer
	if cfg.LogConsole && console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(console),
		})
	}

	var file *lumberjack.Logger
	if path := strings.TrimSpace(cfg.LogPath); path != "" {
		maxSize := cfg.LogMaxSize
		if maxSize <= 0 {
			maxSize = defaultMaxSize
		}
		maxBackups := cfg.LogMaxBackups
		if maxBackups < 0 {
			maxBackups = defaultMaxBackups
		}
		file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		writers = append(writers, file)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	return &Logger{
		Logger: zerolog.New(out).Level(level).With().Timestamp().Logger(),
		file:   file,
	}, nil
}

// ParseLevel maps the configured level name onto zerolog. Names are case
// insensitive; an empty name means INFO.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "TRACE":
		return zerolog.TraceLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "WARN", "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
