package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PathsConfig holds the documentation layout, relative to the project root.
// Static, Templates and Locale are relative to Docs.
type PathsConfig struct {
	// Docs is the documentation source root (contains conf.py)
	Docs string `yaml:"docs" toml:"docs" validate:"required"`

	// Build is the build output root; each format builds into Build/<format>
	Build string `yaml:"build" toml:"build" validate:"required"`

	// Doctrees is the pickled doctree cache directory
	Doctrees string `yaml:"doctrees" toml:"doctrees" validate:"required"`

	// Static is the static asset directory inside Docs
	Static string `yaml:"static" toml:"static" validate:"required"`

	// Templates is the template override directory inside Docs
	Templates string `yaml:"templates" toml:"templates" validate:"required"`

	// Locale is the translation catalog directory inside Docs
	Locale string `yaml:"locale" toml:"locale" validate:"required"`
}

// BuilderConfig configures the documentation build tool invocation
type BuilderConfig struct {
	// Command is the build tool executable
	Command string `yaml:"command" toml:"command" validate:"required"`

	// Timeout bounds a single build invocation (0 = no timeout)
	Timeout time.Duration `yaml:"-" toml:"-" validate:"gte=0"`

	// ExtraArgs are appended to every build invocation
	ExtraArgs []string `yaml:"extra_args" toml:"extra_args"`
}

// HistoryConfig configures the check run history database
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// DBPath is the SQLite database path, relative to the project root
	DBPath string `yaml:"db_path" toml:"db_path" validate:"required_if=Enabled true"`
}

// Config represents docscheck configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `validate:"oneof=trace debug info warn error"`

	// LogDir is the directory where run logs are written ("" disables file logging)
	LogDir string

	// Live enables checks that need a real build or network access
	Live bool

	Paths   PathsConfig
	Builder BuilderConfig
	History HistoryConfig

	// Expected maps configuration keys to their expected values
	// (strings, integers or lists of strings)
	Expected map[string]interface{} `validate:"required"`

	// RequiredFiles maps a check category to its ordered required file names
	RequiredFiles map[string][]string
}

var validate = validator.New()

// DefaultConfig returns a Config describing a conventional Sphinx project
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogDir:   ".docscheck/logs",
		Live:     false,
		Paths: PathsConfig{
			Docs:      "docs",
			Build:     filepath.Join("docs", "_build"),
			Doctrees:  filepath.Join("docs", "_build", "doctrees"),
			Static:    "_static",
			Templates: "_templates",
			Locale:    "locale",
		},
		Builder: BuilderConfig{
			Command: "sphinx-build",
			Timeout: 10 * time.Minute,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(".docscheck", "history.db"),
		},
		Expected:      defaultExpected(),
		RequiredFiles: defaultRequiredFiles(),
	}
}

// fileConfig mirrors the on-disk layout. Timeout is kept as a string so
// both YAML and TOML accept "30m" style durations.
type fileConfig struct {
	LogLevel      string                 `yaml:"log_level" toml:"log_level"`
	LogDir        *string                `yaml:"log_dir" toml:"log_dir"`
	Paths         PathsConfig            `yaml:"paths" toml:"paths"`
	Builder       fileBuilderConfig      `yaml:"builder" toml:"builder"`
	History       *HistoryConfig         `yaml:"history" toml:"history"`
	Expected      map[string]interface{} `yaml:"expected" toml:"expected"`
	RequiredFiles map[string][]string    `yaml:"required_files" toml:"required_files"`
}

type fileBuilderConfig struct {
	Command   string   `yaml:"command" toml:"command"`
	Timeout   string   `yaml:"timeout" toml:"timeout"`
	ExtraArgs []string `yaml:"extra_args" toml:"extra_args"`
}

// LoadConfig loads configuration from the specified file path.
// The format is chosen by extension: .toml uses TOML, anything else YAML.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.merge(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromDir loads docscheck.yaml, or docscheck.toml when no YAML
// file is present, from the specified directory.
func LoadConfigFromDir(dir string) (*Config, error) {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return LoadConfig(yamlPath)
	}
	return LoadConfig(filepath.Join(dir, TOMLConfigFileName))
}

// merge applies non-zero values from the file over the defaults
func (c *Config) merge(fc fileConfig) error {
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	// log_dir may be set to "" explicitly to turn file logging off
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}

	if fc.Paths.Docs != "" {
		c.Paths.Docs = fc.Paths.Docs
		// build and doctrees follow docs unless set explicitly
		c.Paths.Build = filepath.Join(fc.Paths.Docs, "_build")
		c.Paths.Doctrees = filepath.Join(c.Paths.Build, "doctrees")
	}
	if fc.Paths.Build != "" {
		c.Paths.Build = fc.Paths.Build
		c.Paths.Doctrees = filepath.Join(fc.Paths.Build, "doctrees")
	}
	if fc.Paths.Doctrees != "" {
		c.Paths.Doctrees = fc.Paths.Doctrees
	}
	if fc.Paths.Static != "" {
		c.Paths.Static = fc.Paths.Static
	}
	if fc.Paths.Templates != "" {
		c.Paths.Templates = fc.Paths.Templates
	}
	if fc.Paths.Locale != "" {
		c.Paths.Locale = fc.Paths.Locale
	}

	if fc.Builder.Command != "" {
		c.Builder.Command = fc.Builder.Command
	}
	if fc.Builder.Timeout != "" {
		timeout, err := time.ParseDuration(fc.Builder.Timeout)
		if err != nil {
			return fmt.Errorf("invalid builder.timeout format %q: %w", fc.Builder.Timeout, err)
		}
		c.Builder.Timeout = timeout
	}
	if len(fc.Builder.ExtraArgs) > 0 {
		c.Builder.ExtraArgs = append([]string(nil), fc.Builder.ExtraArgs...)
	}

	if fc.History != nil {
		c.History.Enabled = fc.History.Enabled
		if fc.History.DBPath != "" {
			c.History.DBPath = fc.History.DBPath
		}
	}

	// Expected values and required files override per key, so a project
	// only lists what differs from the defaults.
	for key, value := range fc.Expected {
		c.Expected[key] = value
	}
	for category, files := range fc.RequiredFiles {
		c.RequiredFiles[category] = append([]string(nil), files...)
	}

	return nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, live *bool, timeout *time.Duration) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if live != nil {
		c.Live = *live
	}
	if timeout != nil {
		c.Builder.Timeout = *timeout
	}
}

// Validate validates the configuration values.
// Returns an error describing the first invalid field.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config field %s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	for _, p := range []string{c.Paths.Static, c.Paths.Templates, c.Paths.Locale} {
		if filepath.IsAbs(p) {
			return fmt.Errorf("paths.static, paths.templates and paths.locale must be relative to paths.docs, got %q", p)
		}
	}

	for category, files := range c.RequiredFiles {
		for _, f := range files {
			if strings.TrimSpace(f) == "" {
				return fmt.Errorf("required_files.%s contains an empty file name", category)
			}
		}
	}

	return nil
}
