package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrison/docscheck/internal/builder"
	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/logger"
	"github.com/harrison/docscheck/internal/models"
	"github.com/harrison/docscheck/internal/registry"
)

// Logger receives run progress.
type Logger interface {
	LogCategoryStart(category string, count int)
	LogCheckResult(result models.CheckResult) error
	LogSummary(report models.Report)
	LogDebug(message string)
}

// Env is what every check reads: the registry, the build adapter and a
// memoized HTML build shared by all live checks of a run.
type Env struct {
	Registry *registry.Registry
	Builder  builder.Builder
	Logger   Logger

	mu        sync.Mutex
	htmlBuilt bool
	htmlBuild *builder.Result
	htmlErr   error
}

// NewEnv creates an Env. A nil logger discards output.
func NewEnv(reg *registry.Registry, b builder.Builder, log Logger) *Env {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Env{Registry: reg, Builder: b, Logger: log}
}

// HTMLBuild builds the html format once per Env and returns the same result
// to every caller until the build root is cleaned.
func (e *Env) HTMLBuild(ctx context.Context) (*builder.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.htmlBuilt {
		return e.htmlBuild, e.htmlErr
	}
	if e.Builder == nil {
		return nil, fmt.Errorf("no builder configured")
	}

	e.Logger.LogDebug("building html output")
	e.htmlBuild, e.htmlErr = e.Builder.Build(ctx, "html")
	e.htmlBuilt = true
	return e.htmlBuild, e.htmlErr
}

// Clean runs the clean target and forgets the memoized build.
func (e *Env) Clean(ctx context.Context) (*builder.Result, error) {
	if e.Builder == nil {
		return nil, fmt.Errorf("no builder configured")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.htmlBuilt = false
	e.htmlBuild = nil
	e.htmlErr = nil
	return e.Builder.Clean(ctx)
}

// builtHTML returns the html output directory after a successful build.
func (e *Env) builtHTML(ctx context.Context) (string, error) {
	result, err := e.HTMLBuild(ctx)
	if err != nil {
		return "", fmt.Errorf("html build could not run: %w", err)
	}
	if !result.Succeeded() {
		return "", fmt.Errorf("html build exited with status %d:\n%s", result.ExitCode, result.Summary(20))
	}
	return e.path(registry.BuildPathName("html"))
}

func (e *Env) path(name string) (string, error) {
	return e.Registry.PathFor(name)
}

// inDocs joins name onto the docs source root.
func (e *Env) inDocs(name string) (string, error) {
	docs, err := e.path(registry.Docs)
	if err != nil {
		return "", err
	}
	return filepath.Join(docs, filepath.FromSlash(name)), nil
}

func (e *Env) strings(key string) ([]string, error) {
	v, err := e.Registry.ExpectedValue(key)
	if err != nil {
		return nil, err
	}
	return v.Strings(), nil
}

func (e *Env) scalar(key string) (string, error) {
	v, err := e.Registry.ExpectedValue(key)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// rstFiles returns the .rst sources under docs, skipping the build tree.
func (e *Env) rstFiles() ([]string, error) {
	docs, err := e.path(registry.Docs)
	if err != nil {
		return nil, err
	}
	build, err := e.path(registry.Build)
	if err != nil {
		return nil, err
	}

	result, err := fileutil.ScanDirectory(docs, fileutil.ScanOptions{
		Extensions:  []string{".rst"},
		Recursive:   true,
		ExcludeDirs: []string{"_build", filepath.Base(build)},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, result.Errors[0]
	}
	return result.Files, nil
}

// readFile returns the file content, or an error naming the path.
func readFile(path string) (string, error) {
	if err := fileutil.RequireFile(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
