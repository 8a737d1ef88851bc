// Package config loads the erpkit configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/erpkit/internal/adapter"
	"github.com/marcelocantos/erpkit/internal/approval"
	"github.com/marcelocantos/erpkit/internal/gate"
)

// Config holds the global erpkit configuration.
type Config struct {
	Mode       string          `yaml:"mode"`
	Strictness string          `yaml:"strictness"`
	Log        LogConfig       `yaml:"log"`
	Server     ServerConfig    `yaml:"server"`
	Gates      GatesConfig     `yaml:"gates"`
	Adapters   AdaptersConfig  `yaml:"adapters"`
	Approvals  ApprovalsConfig `yaml:"approvals"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig is reported to MCP clients on initialize.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// GatesConfig adjusts the built-in gates and adds Starlark gates.
type GatesConfig struct {
	Disabled []string       `yaml:"disabled"`
	Scripts  []ScriptConfig `yaml:"scripts"`
}

// ScriptConfig declares one Starlark gate. Relative paths are resolved
// against the directory of the config file.
type ScriptConfig struct {
	Name      string   `yaml:"name"`
	Path      string   `yaml:"path"`
	Priority  int      `yaml:"priority"`
	Required  bool     `yaml:"required"`
	AppliesTo []string `yaml:"applies_to"`
}

// AdaptersConfig controls source adapters.
type AdaptersConfig struct {
	Default        string `yaml:"default"`
	ConnectOnStart bool   `yaml:"connect_on_start"`
	MockLatency    string `yaml:"mock_latency"`
}

// ApprovalsConfig seeds the approval store.
type ApprovalsConfig struct {
	Preapproved []string `yaml:"preapproved"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:       string(adapter.ModeMock),
		Strictness: string(gate.Moderate),
		Log:        LogConfig{Level: "info"},
		Server:     ServerConfig{Name: "erpkit"},
		Adapters:   AdaptersConfig{Default: "SAP"},
	}
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "erpkit", "config.yaml")
}

// Load reads the config from the standard location
// (~/.config/erpkit/config.yaml). If the file doesn't exist, returns the
// default config.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads and validates the config at path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Gates.Scripts {
		s := &cfg.Gates.Scripts[i]
		s.Path = expandHome(s.Path)
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(dir, s.Path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}

// Validate checks enumerated values, script declarations and durations.
func (c *Config) Validate() error {
	var errs []error
	if _, err := adapter.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := gate.ParseStrictness(c.Strictness); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q (want debug, info, warn, or error)", c.Log.Level))
	}
	for i, s := range c.Gates.Scripts {
		if s.Name == "" || s.Path == "" {
			errs = append(errs, fmt.Errorf("gates.scripts[%d]: name and path are required", i))
		}
		for _, t := range s.AppliesTo {
			if !gate.ArtifactType(t).Valid() {
				errs = append(errs, fmt.Errorf("gates.scripts[%d]: unknown artifact type %q", i, t))
			}
		}
	}
	if _, err := c.MockLatency(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ModeValue returns the parsed adapter mode.
func (c *Config) ModeValue() adapter.Mode {
	m, err := adapter.ParseMode(c.Mode)
	if err != nil {
		return adapter.ModeMock
	}
	return m
}

// StrictnessValue returns the parsed strictness.
func (c *Config) StrictnessValue() gate.Strictness {
	s, err := gate.ParseStrictness(c.Strictness)
	if err != nil {
		return gate.Moderate
	}
	return s
}

// MockLatency parses adapters.mock_latency; empty means none.
func (c *Config) MockLatency() (time.Duration, error) {
	if c.Adapters.MockLatency == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Adapters.MockLatency)
	if err != nil {
		return 0, fmt.Errorf("adapters.mock_latency: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("adapters.mock_latency: negative duration %s", d)
	}
	return d, nil
}

// ApplyGates disables the configured gates and registers script gates.
func (c *Config) ApplyGates(e *gate.Engine) error {
	for _, name := range c.Gates.Disabled {
		if err := e.SetEnabled(name, false); err != nil {
			return err
		}
	}
	for _, s := range c.Gates.Scripts {
		spec := gate.ScriptSpec{
			Name:     s.Name,
			Path:     s.Path,
			Priority: s.Priority,
			Required: s.Required,
		}
		for _, t := range s.AppliesTo {
			spec.AppliesTo = append(spec.AppliesTo, gate.ArtifactType(t))
		}
		if err := e.RegisterScript(spec); err != nil {
			return err
		}
	}
	return nil
}

// ApplyApprovals seeds approved records for the preapproved artifacts.
func (c *Config) ApplyApprovals(store *approval.Store) error {
	for _, name := range c.Approvals.Preapproved {
		if _, err := store.Preapprove(name, "config"); err != nil {
			return fmt.Errorf("preapprove %s: %w", name, err)
		}
	}
	return nil
}
