package testutil

import (
	"testing"

	"github.com/harrison/docscheck/internal/builder"
	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/registry"
)

// Registry builds a registry over root from the default configuration with
// edit applied. A nil edit keeps the defaults.
func Registry(t testing.TB, root string, edit func(cfg *config.Config)) (*registry.Registry, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	if edit != nil {
		edit(cfg)
	}
	reg, err := registry.New(root, cfg)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return reg, cfg
}

// Builder returns a sphinx builder for reg that runs commands through runner.
func Builder(reg *registry.Registry, cfg *config.Config, runner builder.CommandRunner) *builder.SphinxBuilder {
	return builder.NewSphinxBuilder(reg, cfg.Builder, runner)
}
