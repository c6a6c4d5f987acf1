package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// RootEnvVar overrides project root discovery
	RootEnvVar = "DOCSCHECK_ROOT"

	// LogLevelEnvVar overrides the configured log level
	LogLevelEnvVar = "DOCSCHECK_LOG_LEVEL"

	// LiveEnvVar enables checks that need a live build or network access
	LiveEnvVar = "TEST_DOCS"

	// ConfigFileName is the YAML configuration file, also a root marker
	ConfigFileName = "docscheck.yaml"

	// TOMLConfigFileName is the TOML configuration file, also a root marker
	TOMLConfigFileName = "docscheck.toml"

	// RootMarker marks a project root that has no configuration file
	RootMarker = ".docscheck-root"

	// SphinxConfMarker is the Sphinx configuration, relative to the root
	SphinxConfMarker = "docs/conf.py"
)

// ErrRootNotFound is returned when no project root marker can be located
var ErrRootNotFound = errors.New("project root not found")

// FindProjectRoot returns the absolute project root.
// Priority order:
//  1. DOCSCHECK_ROOT environment variable (if set; must be a directory)
//  2. The nearest ancestor of startDir holding docscheck.yaml,
//     docscheck.toml, .docscheck-root or docs/conf.py
func FindProjectRoot(startDir string) (string, error) {
	if root := os.Getenv(RootEnvVar); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", RootEnvVar, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s=%s is not a directory", ErrRootNotFound, RootEnvVar, root)
		}
		return abs, nil
	}

	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = cwd
	}

	current, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		if hasRootMarker(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("%w (looking for %s, %s, %s or %s above %s)",
		ErrRootNotFound, ConfigFileName, TOMLConfigFileName, RootMarker, SphinxConfMarker, startDir)
}

func hasRootMarker(dir string) bool {
	for _, name := range []string{RootMarker, ConfigFileName, TOMLConfigFileName, SphinxConfMarker} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err == nil {
			return true
		}
	}
	return false
}

// LoadEnv loads root/.env into the process environment.
// Variables already set in the environment are left untouched.
func LoadEnv(root string) error {
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}

// ApplyEnv applies environment overrides to the configuration
func (c *Config) ApplyEnv() {
	if level := os.Getenv(LogLevelEnvVar); level != "" {
		c.LogLevel = level
	}
	c.Live = LiveFromEnv()
}

// LiveFromEnv reports whether TEST_DOCS is set to a non-empty value
func LiveFromEnv() bool {
	return strings.TrimSpace(os.Getenv(LiveEnvVar)) != ""
}

// Load locates the project root from startDir, loads .env and the
// configuration file, applies environment overrides and validates.
func Load(startDir string) (string, *Config, error) {
	root, err := FindProjectRoot(startDir)
	if err != nil {
		return "", nil, err
	}

	if err := LoadEnv(root); err != nil {
		return "", nil, err
	}

	cfg, err := LoadConfigFromDir(root)
	if err != nil {
		return "", nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}
