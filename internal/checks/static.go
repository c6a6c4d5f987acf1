package checks

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

const layoutTemplate = "layout.html"

func staticChecks() []Check {
	return []Check{
		{
			ID:          "static.directory",
			Category:    CategoryStatic,
			Description: "static directory exists",
			Run:         checkStaticDirectory,
		},
		{
			ID:          "static.files",
			Category:    CategoryStatic,
			Description: "theme stylesheet and script are present and non-empty",
			Run:         checkStaticFiles,
		},
		{
			ID:          "static.images",
			Category:    CategoryStatic,
			Description: "image assets are non-empty",
			Run:         assetCheck(registry.Images, "image_extensions"),
		},
		{
			ID:          "static.fonts",
			Category:    CategoryStatic,
			Description: "font assets are non-empty",
			Run:         assetCheck(registry.Fonts, "font_extensions"),
		},
		{
			ID:          "static.templates_directory",
			Category:    CategoryStatic,
			Description: "templates directory exists",
			Run:         checkTemplatesDirectory,
		},
		{
			ID:          "static.layout",
			Category:    CategoryStatic,
			Description: "required templates are present and non-empty",
			Run:         checkLayout,
		},
		{
			ID:          "static.layout_assets",
			Category:    CategoryStatic,
			Description: "layout template references the theme stylesheet and script",
			Run:         checkLayoutAssets,
		},
		{
			ID:          "static.layout_blocks",
			Category:    CategoryStatic,
			Description: "layout template defines every expected block",
			Run:         checkLayoutBlocks,
		},
		{
			ID:          "static.built_files",
			Category:    CategoryStatic,
			Description: "static files are copied into the built site",
			Live:        true,
			Run:         checkBuiltStaticFiles,
		},
	}
}

func checkStaticDirectory(_ context.Context, env *Env) error {
	static, err := env.path(registry.Static)
	if err != nil {
		return err
	}
	return fileutil.RequireDir(static)
}

func checkStaticFiles(_ context.Context, env *Env) error {
	static, err := env.path(registry.Static)
	if err != nil {
		return err
	}
	return requireNonEmptyIn(static, env.Registry.RequiredFiles("static_files"))
}

// assetCheck returns a check that every file with one of the extensions
// under the named directory is non-empty. A missing directory is a skip.
func assetCheck(dirName, extensionsKey string) Func {
	return func(_ context.Context, env *Env) error {
		dir, err := env.path(dirName)
		if err != nil {
			return err
		}
		if err := fileutil.RequireDir(dir); err != nil {
			if errors.Is(err, fileutil.ErrMissing) {
				return Skip("no %s directory at %s", dirName, dir)
			}
			return err
		}
		exts, err := env.strings(extensionsKey)
		if err != nil {
			return err
		}

		result, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
			Extensions: exts,
			Recursive:  true,
		})
		if err != nil {
			return err
		}

		var failure Failure
		for _, scanErr := range result.Errors {
			failure.AddErr("", scanErr)
		}
		for _, file := range result.Files {
			if err := fileutil.RequireNonEmpty(file); err != nil {
				failure.AddErr(file, err)
			}
		}
		return failure.Err()
	}
}

func checkTemplatesDirectory(_ context.Context, env *Env) error {
	templates, err := env.path(registry.Templates)
	if err != nil {
		return err
	}
	return fileutil.RequireDir(templates)
}

func checkLayout(_ context.Context, env *Env) error {
	templates, err := env.path(registry.Templates)
	if err != nil {
		return err
	}
	return requireNonEmptyIn(templates, env.Registry.RequiredFiles("templates"))
}

func readLayout(env *Env) (string, string, error) {
	templates, err := env.path(registry.Templates)
	if err != nil {
		return "", "", err
	}
	layout := filepath.Join(templates, layoutTemplate)
	content, err := readFile(layout)
	return content, layout, err
}

func checkLayoutAssets(_ context.Context, env *Env) error {
	content, layout, err := readLayout(env)
	if err != nil {
		return err
	}
	css, err := env.strings("css_files")
	if err != nil {
		return err
	}
	js, err := env.strings("js_files")
	if err != nil {
		return err
	}

	var failure Failure
	for _, name := range append(append([]string{}, css...), js...) {
		if !strings.Contains(content, name) {
			failure.AddFile(layout, "%s not referenced in %s", name, layout)
		}
	}
	return failure.Err()
}

func checkLayoutBlocks(_ context.Context, env *Env) error {
	content, layout, err := readLayout(env)
	if err != nil {
		return err
	}
	blocks, err := env.strings("layout_blocks")
	if err != nil {
		return err
	}

	var failure Failure
	for _, block := range blocks {
		pattern := regexp.MustCompile(`\{%-?\s*block\s+` + regexp.QuoteMeta(block) + `\s*-?%\}`)
		if !pattern.MatchString(content) {
			failure.AddFile(layout, "block %s not defined in %s", block, layout)
		}
	}
	return failure.Err()
}

func checkBuiltStaticFiles(ctx context.Context, env *Env) error {
	if _, err := env.builtHTML(ctx); err != nil {
		return err
	}
	static, err := env.path(registry.HTMLStatic)
	if err != nil {
		return err
	}
	return requireNonEmptyIn(static, env.Registry.RequiredFiles("static_files"))
}

// requireNonEmptyIn checks every name under dir and reports all failures.
func requireNonEmptyIn(dir string, names []string) error {
	var failure Failure
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := fileutil.RequireNonEmpty(path); err != nil {
			failure.AddErr(path, err)
		}
	}
	return failure.Err()
}
