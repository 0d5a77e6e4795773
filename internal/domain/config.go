// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EngineMySQL  = "mysql"
	EngineSQLite = "sqlite"

	DefaultMySQLPort      = 3306
	DefaultConnectTimeout = 10
)

// Config represents the application configuration
type Config struct {
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	LogConsole    bool   `toml:"logConsole" mapstructure:"logConsole"`

	// Database holds the connection parameters. The section keeps the
	// historical [mysql] name even when Engine selects sqlite.
	Database DatabaseConfig `toml:"mysql" mapstructure:"mysql"`
}

// DatabaseConfig is the flat set of connection parameters read from the
// [mysql] section of the configuration file.
type DatabaseConfig struct {
	Engine         string `toml:"engine" mapstructure:"engine"`
	Host           string `toml:"host" mapstructure:"host"`
	Port           int    `toml:"port" mapstructure:"port"`
	User           string `toml:"user" mapstructure:"user"`
	Password       string `toml:"password" mapstructure:"password"`
	Database       string `toml:"database" mapstructure:"database"`
	Path           string `toml:"path" mapstructure:"path"`
	ConnectTimeout int    `toml:"connectTimeout" mapstructure:"connectTimeout"`
}

// EngineName returns the normalized engine, defaulting to mysql.
func (c DatabaseConfig) EngineName() string {
	engine := strings.ToLower(strings.TrimSpace(c.Engine))
	switch engine {
	case "", "mariadb":
		return EngineMySQL
	case "sqlite3":
		return EngineSQLite
	}
	return engine
}

// Validate checks that the keys required by the selected engine are present.
func (c DatabaseConfig) Validate() error {
	switch c.EngineName() {
	case EngineMySQL:
		var missing []string
		for _, kv := range []struct{ key, value string }{
			{"user", c.User},
			{"host", c.Host},
			{"database", c.Database},
		} {
			if strings.TrimSpace(kv.value) == "" {
				missing = append(missing, kv.key)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required database keys: %s", strings.Join(missing, ", "))
		}
		if IsRedactedString(c.Password) {
			return errors.New("database password holds the redaction placeholder, not a real password")
		}
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("invalid database port %d", c.Port)
		}
	case EngineSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return errors.New("sqlite database path is required")
		}
	default:
		return fmt.Errorf("unsupported database engine %q", c.Engine)
	}

	return nil
}

// Redacted returns a copy that is safe to log.
func (c DatabaseConfig) Redacted() DatabaseConfig {
	c.Password = RedactString(c.Password)
	return c
}
