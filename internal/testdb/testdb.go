// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	// Register the sqlite driver for template creation and verification.
	_ "modernc.org/sqlite"

	"github.com/tmdag/dbconnector/internal/dbinterface"
	"github.com/tmdag/dbconnector/internal/domain"
)

// Schema is the fixture pipeline database every template starts from.
const Schema = `
CREATE TABLE shows (
	showID INTEGER PRIMARY KEY AUTOINCREMENT,
	showName TEXT NOT NULL,
	year INTEGER
);

CREATE TABLE shots (
	shotID INTEGER PRIMARY KEY AUTOINCREMENT,
	shows_showID INTEGER NOT NULL REFERENCES shows(showID),
	shotName TEXT NOT NULL,
	frames INTEGER
);

CREATE TABLE cameras (
	cameraID INTEGER PRIMARY KEY AUTOINCREMENT,
	cameraName TEXT NOT NULL,
	vendor TEXT,
	megapixels REAL,
	thumbnail BLOB
);

CREATE TABLE software (
	softwareId INTEGER PRIMARY KEY AUTOINCREMENT,
	softwareName TEXT NOT NULL,
	version TEXT NOT NULL
);

CREATE TABLE tags (
	name TEXT NOT NULL,
	note TEXT
);

INSERT INTO shows (showName, year) VALUES ('Pilot', 2019), ('Finale', 2021);

INSERT INTO shots (shows_showID, shotName, frames) VALUES
	(1, 'sh010', 120),
	(1, 'sh020', 96),
	(2, 'sh010', 240);

INSERT INTO software (softwareName, version) VALUES
	('Houdini', '20.5'),
	('Houdini', '19.0'),
	('Nuke', '15.1');

INSERT INTO tags (name, note) VALUES ('hero', 'main asset');
`

// Tables lists the fixture tables in the order sqlite_master sorts them.
var Tables = []string{"cameras", "shots", "shows", "software", "tags"}

type templateState struct {
	once sync.Once
	path string
	err  error
}

var (
	templatesMu sync.Mutex
	templates   = make(map[string]*templateState)
)

// PathFromTemplate returns a fresh database file path for a test by cloning a
// package-level fixture template database. This avoids rebuilding the
// fixture schema for every test while keeping test database isolation.
func PathFromTemplate(t *testing.T, key, filename string) string {
	t.Helper()

	state := getTemplateState(key)
	state.once.Do(func() {
		state.path, state.err = createTemplateDB(key)
	})
	if state.err != nil {
		t.Fatalf("prepare test DB template %q: %v", key, state.err)
	}

	dbPath := filepath.Join(t.TempDir(), filename)
	if err := cloneDatabaseFiles(state.path, dbPath); err != nil {
		t.Fatalf("clone test DB template %q to %s: %v", key, dbPath, err)
	}

	return dbPath
}

// Config returns a configuration pointing the facade at the sqlite file.
func Config(path string) *domain.Config {
	return &domain.Config{
		LogLevel: "DEBUG",
		Database: domain.DatabaseConfig{
			Engine: domain.EngineSQLite,
			Path:   path,
		},
	}
}

// OpenVerifier opens a second, independent connection to the database file
// so tests can observe what other sessions see.
func OpenVerifier(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open verifier for %s: %v", path, err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// CountRows counts the rows of table through q.
func CountRows(ctx context.Context, q dbinterface.Querier, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, strings.ReplaceAll(table, `"`, `""`))
	if err := q.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func getTemplateState(key string) *templateState {
	templatesMu.Lock()
	defer templatesMu.Unlock()

	state, ok := templates[key]
	if ok {
		return state
	}

	state = &templateState{}
	templates[key] = state
	return state
}

func createTemplateDB(key string) (string, error) {
	templateDir, err := os.MkdirTemp("", fmt.Sprintf("dbconnector-%s-template-", sanitizeKey(key)))
	if err != nil {
		return "", err
	}

	templatePath := filepath.Join(templateDir, "template.db")
	db, err := sql.Open("sqlite", templatePath)
	if err != nil {
		return "", err
	}

	if _, err := db.ExecContext(context.Background(), Schema); err != nil {
		_ = db.Close()
		return "", fmt.Errorf("apply fixture schema: %w", err)
	}

	if err := db.Close(); err != nil {
		return "", err
	}

	return templatePath, nil
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "testdb"
	}

	var b strings.Builder
	b.Grow(len(key))
	for _, ch := range key {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			continue
		}
		b.WriteByte('-')
	}

	return b.String()
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}

	return dstFile.Close()
}

func cloneDatabaseFiles(srcMain, dstMain string) error {
	if err := copyFile(srcMain, dstMain); err != nil {
		return err
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := copyOptionalFile(srcMain+suffix, dstMain+suffix); err != nil {
			return err
		}
	}

	return nil
}

func copyOptionalFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return copyFile(src, dst)
}
