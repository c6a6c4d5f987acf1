package checks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/docscheck/internal/builder"
	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

func buildChecks() []Check {
	return []Check{
		{
			ID:          "build.html",
			Category:    CategoryBuild,
			Description: "html build exits 0 without warning markers and writes index.html",
			Live:        true,
			Run:         checkHTMLBuild,
		},
		{
			ID:          "build.output",
			Category:    CategoryBuild,
			Description: "html build writes every required output file",
			Live:        true,
			Run:         checkBuildOutput,
		},
		{
			ID:          "build.strict",
			Category:    CategoryBuild,
			Description: "html build with warnings as errors exits 0",
			Live:        true,
			Run:         checkStrictBuild,
		},
		{
			ID:          "build.formats",
			Category:    CategoryBuild,
			Description: "every required builder produces non-empty output",
			Live:        true,
			Run:         checkBuildFormats,
		},
		{
			ID:          "build.clean",
			Category:    CategoryBuild,
			Description: "clean target empties the build directory",
			Live:        true,
			Run:         checkClean,
		},
	}
}

func checkHTMLBuild(ctx context.Context, env *Env) error {
	result, err := env.HTMLBuild(ctx)
	if err != nil {
		return fmt.Errorf("html build could not run: %w", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("html build failed with exit status %d:\n%s", result.ExitCode, result.Summary(20))
	}

	markers, err := env.strings("warning_markers")
	if err != nil {
		return err
	}
	if found := result.Markers(markers); len(found) > 0 {
		return fmt.Errorf("html build reported %s:\n%s", strings.Join(found, ", "), result.Summary(20))
	}

	out, err := env.path(registry.BuildPathName("html"))
	if err != nil {
		return err
	}
	return fileutil.RequireFile(filepath.Join(out, "index.html"))
}

func checkBuildOutput(ctx context.Context, env *Env) error {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return err
	}

	var failure Failure
	for _, name := range env.Registry.RequiredFiles("build_output") {
		path := filepath.Join(out, filepath.FromSlash(name))
		if err := fileutil.RequireFile(path); err != nil {
			failure.AddFile(path, "expected build output %s not found", name)
		}
	}
	return failure.Err()
}

func checkStrictBuild(ctx context.Context, env *Env) error {
	result, err := env.Builder.BuildStrict(ctx, "html")
	if err != nil {
		return fmt.Errorf("strict html build could not run: %w", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("html build with warnings as errors failed with exit status %d:\n%s", result.ExitCode, result.Summary(20))
	}
	return nil
}

func checkBuildFormats(ctx context.Context, env *Env) error {
	var failure Failure
	for _, format := range env.Registry.Formats() {
		if env.Registry.IsOptionalFormat(format) {
			env.Logger.LogDebug(fmt.Sprintf("skipping optional builder %s", format))
			continue
		}

		var result *builder.Result
		var err error
		if format == "html" {
			result, err = env.HTMLBuild(ctx)
		} else {
			result, err = env.Builder.Build(ctx, format)
		}
		if err != nil {
			failure.Addf("%s build could not run: %v", format, err)
			continue
		}
		if !result.Succeeded() {
			failure.Addf("%s build failed with exit status %d:\n%s", format, result.ExitCode, result.Summary(10))
			continue
		}

		out, err := env.path(registry.BuildPathName(format))
		if err != nil {
			failure.AddErr("", err)
			continue
		}
		if err := fileutil.RequireDir(out); err != nil {
			failure.AddFile(out, "%s output directory not found: %s", format, out)
			continue
		}
		if empty, err := fileutil.IsEmptyDir(out); err != nil || empty {
			failure.AddFile(out, "%s output directory is empty: %s", format, out)
		}
	}
	return failure.Err()
}

func checkClean(ctx context.Context, env *Env) error {
	// make sure there is something to clean
	if _, err := env.builtHTML(ctx); err != nil {
		return err
	}

	result, err := env.Clean(ctx)
	if err != nil {
		return fmt.Errorf("clean could not run: %w", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("clean failed with exit status %d:\n%s", result.ExitCode, result.Summary(10))
	}

	build, err := env.path(registry.Build)
	if err != nil {
		return err
	}
	empty, err := fileutil.IsEmptyDir(build)
	if err != nil {
		return err
	}
	if !empty {
		return &Failure{Problems: []string{fmt.Sprintf("build directory is not empty after clean: %s", build)}, Files: []string{build}}
	}
	return nil
}
