package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/builder"
	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/logger"
	"github.com/harrison/docscheck/internal/models"
	"github.com/harrison/docscheck/internal/registry"
)

// newCommandRunner creates the runner builds go through. Tests replace it.
var newCommandRunner = func() builder.CommandRunner {
	return builder.NewExecRunner()
}

// loadProject resolves the project root and configuration from the global
// flags, the environment and the config file, and builds the registry.
// Flags override the environment, which overrides the file.
func loadProject(cmd *cobra.Command) (*registry.Registry, *config.Config, error) {
	flags := cmd.Flags()
	root, _ := flags.GetString("root")
	configPath, _ := flags.GetString("config")

	var err error
	if root == "" {
		root, err = config.FindProjectRoot("")
		if err != nil {
			return nil, nil, &registry.ConfigurationError{Message: "locate project root", Err: err}
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, nil, &registry.ConfigurationError{Message: "resolve project root", Err: err}
	}

	if err := config.LoadEnv(root); err != nil {
		return nil, nil, &registry.ConfigurationError{Message: "load .env", Err: err}
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, nil, &registry.ConfigurationError{Message: fmt.Sprintf("load config from %s", configPath), Err: err}
		}
	} else {
		cfg, err = config.LoadConfigFromDir(root)
		if err != nil {
			return nil, nil, &registry.ConfigurationError{Message: "load config", Err: err}
		}
	}
	cfg.ApplyEnv()

	var logLevel *string
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		logLevel = &level
	}
	var live *bool
	if flags.Changed("live") {
		v, _ := flags.GetBool("live")
		live = &v
	}
	cfg.MergeWithFlags(logLevel, nil, live, nil)

	if err := cfg.Validate(); err != nil {
		return nil, nil, &registry.ConfigurationError{Message: "invalid configuration", Err: err}
	}

	reg, err := registry.New(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

// resolvePath makes a configured path absolute against the project root.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// newBuilder creates the sphinx builder for a project, logging command
// lines to log.
func newBuilder(reg *registry.Registry, cfg *config.Config, log builder.Logger) *builder.SphinxBuilder {
	b := builder.NewSphinxBuilder(reg, cfg.Builder, newCommandRunner())
	b.Logger = log
	return b
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runLogger is what a run reports progress to.
type runLogger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogCategoryStart(category string, count int)
	LogCheckResult(result models.CheckResult) error
	LogSummary(report models.Report)
}

// multiLogger delegates to multiple loggers
type multiLogger struct {
	loggers []runLogger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogCategoryStart forwards to all loggers
func (ml *multiLogger) LogCategoryStart(category string, count int) {
	for _, l := range ml.loggers {
		l.LogCategoryStart(category, count)
	}
}

// LogCheckResult forwards to all loggers
func (ml *multiLogger) LogCheckResult(result models.CheckResult) error {
	var lastErr error
	for _, l := range ml.loggers {
		if err := l.LogCheckResult(result); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(report models.Report) {
	for _, l := range ml.loggers {
		l.LogSummary(report)
	}
}

// newRunLogger logs to the command output and, when log_dir is set, to a
// run log file. The returned close function is never nil.
func newRunLogger(cmd *cobra.Command, reg *registry.Registry, cfg *config.Config) (*multiLogger, func(), error) {
	ml := &multiLogger{
		loggers: []runLogger{logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)},
	}
	if cfg.LogDir == "" {
		return ml, func() {}, nil
	}

	fileLog, err := logger.NewFileLogger(resolvePath(reg.RootPath(), cfg.LogDir), cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	ml.loggers = append(ml.loggers, fileLog)
	return ml, func() { fileLog.Close() }, nil
}
