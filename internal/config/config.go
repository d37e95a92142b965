/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the scriptfmt user configuration: a YAML file in the
// user scope, validated against an embedded schema, with SFMT_* environment
// variables as read-only overrides. Secrets never touch the file; they live in
// the OS keychain.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "scriptformatter/internal/log"
)

// CurrentVersion is the config_version written by Save.
const CurrentVersion = 1

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Options converts the logging section to logger options.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// StyleConfig points at an optional house-style YAML file layered over the builtin styles.
type StyleConfig struct {
	File string `yaml:"file"`
}

// JournalConfig controls the per-run history. An empty DSN means a SQLite file
// next to the document; a postgres:// DSN shares one journal between machines.
// The database password is not stored here; see JournalPassword.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Keep    int    `yaml:"keep"`
}

// ExportConfig holds page geometry for PDF and fixed-width text exports.
// Lengths are in points.
type ExportConfig struct {
	PageSize string  `yaml:"page_size"` // "Letter" or "A4"
	Margin   float64 `yaml:"margin"`
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font_size"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Logging       LoggingConfig `yaml:"logging"`
	Style         StyleConfig   `yaml:"style"`
	Journal       JournalConfig `yaml:"journal"`
	Export        ExportConfig  `yaml:"export"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Journal:       JournalConfig{Enabled: true, Keep: 50},
		Export:        ExportConfig{PageSize: "Letter", Margin: 72, Font: "Courier", FontSize: 12},
	}
}

// Env var names used as overrides.
const (
	EnvLogLevel    = "SFMT_LOG_LEVEL"
	EnvLogFormat   = "SFMT_LOG_FORMAT"
	EnvLogSource   = "SFMT_LOG_SOURCE"
	EnvLogFile     = "SFMT_LOG_FILE"
	EnvStyleFile   = "SFMT_STYLE_FILE"
	EnvJournal     = "SFMT_JOURNAL"
	EnvJournalDSN  = "SFMT_JOURNAL_DSN"
	EnvJournalKeep = "SFMT_JOURNAL_KEEP"
	EnvPageSize    = "SFMT_PAGE_SIZE"
)

// envKeys maps config keys to the variables that override them.
var envKeys = map[string]string{
	"logging.level":    EnvLogLevel,
	"logging.format":   EnvLogFormat,
	"logging.source":   EnvLogSource,
	"logging.file":     EnvLogFile,
	"style.file":       EnvStyleFile,
	"journal.enabled":  EnvJournal,
	"journal.dsn":      EnvJournalDSN,
	"journal.keep":     EnvJournalKeep,
	"export.page_size": EnvPageSize,
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ScriptFormatter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ScriptFormatter")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "scriptfmt")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "scriptfmt")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (ConfigPath when empty), layers it over
// Defaults and applies environment overrides. A missing file is not an error.
// The journal password is read from the keychain and returned separately.
func Load(path string) (AppConfig, string, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, "", err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, "", fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := Validate(data); err != nil {
			return cfg, "", fmt.Errorf("config %s: %w", path, err)
		}
		// Decoding onto the defaults keeps every key the file leaves out.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)

	secret, err := JournalPassword()
	if err != nil {
		applog.WithComponent("config").Warn("keychain unavailable", "err", err)
	}
	return cfg, secret, nil
}

// Save writes cfg to path (ConfigPath when empty) and stores a non-empty
// journal password in the keychain.
func Save(path string, cfg AppConfig, password string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.ConfigVersion = CurrentVersion
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		return SetJournalPassword(password)
	}
	return nil
}

func normalize(cfg *AppConfig) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Style.File = strings.TrimSpace(cfg.Style.File)
	cfg.Journal.DSN = strings.TrimSpace(cfg.Journal.DSN)
	if cfg.Journal.Keep < 0 {
		cfg.Journal.Keep = 0
	}
	if cfg.Export.FontSize <= 0 {
		cfg.Export.FontSize = Defaults().Export.FontSize
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStyleFile)); v != "" {
		cfg.Style.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournal)); v != "" {
		cfg.Journal.Enabled = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalDSN)); v != "" {
		cfg.Journal.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalKeep)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Journal.Keep = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		cfg.Export.PageSize = v
	}
}

// EnvOverrideFor returns the env var name if the key is overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Keys lists every config key that has an environment override, sorted.
func Keys() []string {
	out := make([]string, 0, len(envKeys))
	for k := range envKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
