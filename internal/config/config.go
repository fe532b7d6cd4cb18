// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package config loads markitdown settings from a YAML file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	markitdown "github.com/conductor-oss/markitdown-pages"
)

// EnvPrefix prefixes environment overrides, e.g. MARKITDOWN_EXTRACT_PAGES.
const EnvPrefix = "MARKITDOWN"

// Config holds the settings shared by every conversion of a run.
type Config struct {
	ExtractPages bool   `mapstructure:"extract_pages"`
	KeepDataURIs bool   `mapstructure:"keep_data_uris"`
	StyleMap     string `mapstructure:"style_map"`
	StyleMapFile string `mapstructure:"style_map_file"`
	PDFFallback  bool   `mapstructure:"pdf_fallback"`
	Verbose      bool   `mapstructure:"verbose"`
}

// Keys lists the recognised configuration keys.
var Keys = []string{"extract_pages", "keep_data_uris", "style_map", "style_map_file", "pdf_fallback", "verbose"}

// New returns a viper instance reading path, or markitdown.yaml from the
// working directory and ~/.config/markitdown when path is empty. Defaults are
// registered for every key so environment overrides apply without a file.
func New(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("markitdown")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "markitdown"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("extract_pages", false)
	v.SetDefault("keep_data_uris", false)
	v.SetDefault("style_map", "")
	v.SetDefault("style_map_file", "")
	v.SetDefault("pdf_fallback", false)
	v.SetDefault("verbose", false)
	return v
}

// Load reads the configuration at path (see New). A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	return FromViper(New(path))
}

// FromViper reads the config file registered on v, if any, and decodes the
// merged settings.
func FromViper(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// StyleMapRules returns the inline style map followed by the rules read from
// StyleMapFile. The result is validated with markitdown.ParseStyleMap.
func (c *Config) StyleMapRules() (string, error) {
	rules := strings.TrimSpace(c.StyleMap)
	if c.StyleMapFile != "" {
		data, err := os.ReadFile(c.StyleMapFile)
		if err != nil {
			return "", fmt.Errorf("read style map: %w", err)
		}
		if file := strings.TrimSpace(string(data)); file != "" {
			if rules != "" {
				rules += "\n"
			}
			rules += file
		}
	}
	if _, err := markitdown.ParseStyleMap(rules); err != nil {
		return "", err
	}
	return rules, nil
}

// Options converts the configuration into instance options.
func (c *Config) Options() ([]markitdown.Option, error) {
	rules, err := c.StyleMapRules()
	if err != nil {
		return nil, err
	}
	opts := []markitdown.Option{
		markitdown.WithKeepDataURIs(c.KeepDataURIs),
		markitdown.WithPDFFallback(c.PDFFallback),
	}
	if rules != "" {
		opts = append(opts, markitdown.WithStyleMap(rules))
	}
	return opts, nil
}

// ConvertOptions converts the configuration into per-call options.
func (c *Config) ConvertOptions() []markitdown.ConvertOption {
	return []markitdown.ConvertOption{markitdown.WithExtractPages(c.ExtractPages)}
}
