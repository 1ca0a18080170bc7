/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config persists the user-editable application configuration to a
// YAML file in the user scope. Environment variables are treated as read-only
// overrides at runtime.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeneralConfig carries cross-cutting application preferences.
type GeneralConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
}

// AuthoringConfig carries defaults applied to new subtitle work.
// The frame rate is a rational (e.g. 24000/1001 for NTSC film) used by
// frame-accurate filter nodes when a video is not loaded.
type AuthoringConfig struct {
	FrameRateNumerator   uint32 `yaml:"frame_rate_numerator"`
	FrameRateDenominator uint32 `yaml:"frame_rate_denominator"`
}

// FilterLibraryConfig locates the local filter-graph library database.
// An empty path means "use the default location next to the config file".
type FilterLibraryConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the root of the persisted configuration.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int                 `yaml:"config_version"`
	General       GeneralConfig       `yaml:"general"`
	Authoring     AuthoringConfig     `yaml:"authoring"`
	FilterLibrary FilterLibraryConfig `yaml:"filter_library"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Authoring:     AuthoringConfig{FrameRateNumerator: 24000, FrameRateDenominator: 1001},
		FilterLibrary: FilterLibraryConfig{Path: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvFrameRateNum  = "GSS_FRAME_RATE_NUM"
	EnvFrameRateDen  = "GSS_FRAME_RATE_DEN"
	EnvFilterLibPath = "GSS_FILTER_LIBRARY"
	EnvLogLevel      = "GSS_LOG_LEVEL"
	EnvLogFormat     = "GSS_LOG_FORMAT"
	EnvLogSource     = "GSS_LOG_SOURCE"
	EnvLogFile       = "GSS_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoSubStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoSubStudio")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gosubstudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A missing or unreadable file is not an error.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML, creating the config directory if needed.
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// FilterLibraryPath resolves the filter-library database location, falling
// back to a file next to the user config.
func (c AppConfig) FilterLibraryPath() (string, error) {
	if strings.TrimSpace(c.FilterLibrary.Path) != "" {
		return c.FilterLibrary.Path, nil
	}
	cfgPath, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cfgPath), "filters.sqlite"), nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.Authoring.FrameRateNumerator != 0 {
		dst.Authoring.FrameRateNumerator = src.Authoring.FrameRateNumerator
	}
	if src.Authoring.FrameRateDenominator != 0 {
		dst.Authoring.FrameRateDenominator = src.Authoring.FrameRateDenominator
	}
	if strings.TrimSpace(src.FilterLibrary.Path) != "" {
		dst.FilterLibrary.Path = strings.TrimSpace(src.FilterLibrary.Path)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFrameRateNum)); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n != 0 {
			cfg.Authoring.FrameRateNumerator = uint32(n)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFrameRateDen)); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n != 0 {
			cfg.Authoring.FrameRateDenominator = uint32(n)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFilterLibPath)); v != "" {
		cfg.FilterLibrary.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}
