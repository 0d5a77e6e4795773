// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/tmdag/dbconnector/internal/buildinfo"
	"github.com/tmdag/dbconnector/internal/domain"
)

type OpenOptions struct {
	Engine         string
	SQLitePath     string
	MySQLDSN       string
	MySQLHost      string
	MySQLPort      int
	MySQLUser      string
	MySQLPassword  string
	MySQLDatabase  string
	ConnectTimeout time.Duration
}

// Option configures a DB at construction time.
type Option func(*DB)

// WithLogger sets the logger every statement is reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(db *DB) {
		db.log = logger.With().Str("component", "database").Logger()
	}
}

// New validates opts and returns an unconnected facade. No network or file
// access happens until Connect.
func New(opts OpenOptions, options ...Option) (*DB, error) {
	dialect, err := parseDialect(opts.Engine)
	if err != nil {
		return nil, err
	}

	var dsn string
	switch dialect {
	case DialectSQLite:
		dsn = strings.TrimSpace(opts.SQLitePath)
		if dsn == "" {
			return nil, errors.New("sqlite database path is required")
		}
	case DialectMySQL:
		dsn = strings.TrimSpace(opts.MySQLDSN)
		if dsn == "" {
			dsn = buildMySQLDSN(opts)
		}
		if dsn == "" {
			return nil, errors.New("mysql host, user and database are required")
		}
	default:
		return nil, fmt.Errorf("unsupported database engine %q", opts.Engine)
	}

	db := &DB{
		dialect: dialect,
		dsn:     dsn,
		log:     zerolog.Nop(),
		state:   StateUnconnected,
	}
	for _, option := range options {
		option(db)
	}

	return db, nil
}

// NewFromConfig builds the facade from the [mysql] section of cfg.
func NewFromConfig(cfg *domain.Config, options ...Option) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	section := cfg.Database
	if err := section.Validate(); err != nil {
		return nil, err
	}

	return New(OpenOptions{
		Engine:         section.EngineName(),
		SQLitePath:     section.Path,
		MySQLHost:      section.Host,
		MySQLPort:      section.Port,
		MySQLUser:      section.User,
		MySQLPassword:  section.Password,
		MySQLDatabase:  section.Database,
		ConnectTimeout: time.Duration(section.ConnectTimeout) * time.Second,
	}, options...)
}

func buildMySQLDSN(opts OpenOptions) string {
	host := strings.TrimSpace(opts.MySQLHost)
	user := strings.TrimSpace(opts.MySQLUser)
	dbName := strings.TrimSpace(opts.MySQLDatabase)
	if host == "" || user == "" || dbName == "" {
		return ""
	}

	port := opts.MySQLPort
	if port <= 0 {
		port = domain.DefaultMySQLPort
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = domain.DefaultConnectTimeout * time.Second
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = opts.MySQLPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = dbName
	cfg.Collation = "utf8mb4_general_ci"
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = connectTimeout
	// Report matched rather than changed rows so an UPDATE that writes
	// identical values still counts the row it found.
	cfg.ClientFoundRows = true
	cfg.ConnectionAttributes = "program_name:" + buildinfo.Name + ",program_version:" + buildinfo.Version

	return cfg.FormatDSN()
}

// redactDSN hides the password of a MySQL DSN for logging.
func redactDSN(dialect Dialect, dsn string) string {
	if dialect != DialectMySQL {
		return dsn
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return domain.RedactedStr
	}
	cfg.Passwd = domain.RedactString(cfg.Passwd)
	return cfg.FormatDSN()
}
