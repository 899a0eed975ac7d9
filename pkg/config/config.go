/* Copyright 2025, the ovirt-apply authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the engine connection and run settings from a YAML
// file. Values may reference environment variables as ${VAR} or
// ${VAR:default}; OVIRT_* variables override the file afterwards so
// credentials can stay out of it entirely.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Run    RunConfig    `yaml:"run"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig contains engine API connection settings.
type EngineConfig struct {
	URL      string   `yaml:"url"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Token    string   `yaml:"token"`    // Pre-issued SSO token, skips the password grant
	Insecure bool     `yaml:"insecure"` // Skip TLS verification
	CAFile   string   `yaml:"ca_file"`
	Timeout  Duration `yaml:"timeout"` // HTTP timeout for API requests
}

// RunConfig contains reconciliation run settings.
type RunConfig struct {
	NoWait       bool     `yaml:"no_wait"`       // Skip polling for convergence
	Timeout      Duration `yaml:"timeout"`       // Per-resource convergence timeout
	PollInterval Duration `yaml:"poll_interval"` // Delay between state polls
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	JSON   bool   `yaml:"json"`
	Colors bool   `yaml:"colors"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file. A missing file is not an
// error when OVIRT_* variables carry the full connection.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := expandEnvVars(string(data))
		dec := yaml.NewDecoder(strings.NewReader(expanded))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if cfg.Engine.URL == "" {
		return nil, fmt.Errorf("engine url is not set (config %q or OVIRT_URL)", path)
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OVIRT_URL"); v != "" {
		c.Engine.URL = v
	}
	if v := os.Getenv("OVIRT_USERNAME"); v != "" {
		c.Engine.Username = v
	}
	if v := os.Getenv("OVIRT_PASSWORD"); v != "" {
		c.Engine.Password = v
	}
	if v := os.Getenv("OVIRT_TOKEN"); v != "" {
		c.Engine.Token = v
	}
	if v := os.Getenv("OVIRT_INSECURE"); v == "1" || v == "true" {
		c.Engine.Insecure = true
	}
	if v := os.Getenv("OVIRT_CAFILE"); v != "" {
		c.Engine.CAFile = v
	}
}

func (c *Config) applyDefaults() {
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = Duration(30 * time.Second)
	}
	if c.Run.Timeout == 0 {
		c.Run.Timeout = Duration(180 * time.Second)
	}
	if c.Run.PollInterval == 0 {
		c.Run.PollInterval = Duration(3 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
