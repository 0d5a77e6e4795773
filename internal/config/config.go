// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/tmdag/dbconnector/internal/domain"
)

const (
	// DefaultPath is used when no configuration file is given.
	DefaultPath = "config.ini"

	// EnvPrefix prefixes environment overrides, e.g. DBCONNECTOR__MYSQL_PASSWORD.
	EnvPrefix = "DBCONNECTOR_"

	sectionName = "mysql"
)

var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrSectionNotFound = errors.New("config section not found")
)

// Load reads the configuration file at path, applies environment overrides
// and validates the [mysql] section. INI, TOML and YAML files are accepted.
func Load(path string) (*domain.Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrConfigNotFound, "file %s", path)
		}
		return nil, errors.Wrapf(err, "could not stat config file %s", path)
	}

	v := viper.New()
	setDefaults(v)

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	if !v.InConfig(sectionName) {
		return nil, errors.Wrapf(ErrSectionNotFound, "[%s] not found in the %s file", sectionName, path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "could not decode config file %s", path)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid [%s] section in %s", sectionName, path)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logPath", "")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)
	v.SetDefault("logConsole", true)

	// every key needs a default so environment overrides reach Unmarshal
	v.SetDefault("mysql.engine", domain.EngineMySQL)
	v.SetDefault("mysql.host", "")
	v.SetDefault("mysql.port", domain.DefaultMySQLPort)
	v.SetDefault("mysql.user", "")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "")
	v.SetDefault("mysql.path", "")
	v.SetDefault("mysql.connectTimeout", domain.DefaultConnectTimeout)
}

func readFile(v *viper.Viper, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml", ".json":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "could not read config file %s", path)
		}
		return nil
	default:
		values, err := readINI(path)
		if err != nil {
			return errors.Wrapf(err, "could not read config file %s", path)
		}
		if err := v.MergeConfigMap(values); err != nil {
			return errors.Wrapf(err, "could not merge config file %s", path)
		}
		return nil
	}
}

// readINI flattens an INI file into the nested map viper expects. Keys
// outside any section land at the top level.
func readINI(path string) (map[string]any, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.KeysHash()
		if section.Name() == ini.DefaultSection {
			for k, val := range keys {
				values[k] = val
			}
			continue
		}

		nested := make(map[string]any, len(keys))
		for k, val := range keys {
			nested[k] = val
		}
		values[section.Name()] = nested
	}

	return values, nil
}
