package checks

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

var (
	extensionsPattern = regexp.MustCompile(`(?s)extensions\s*=\s*\[(.*?)\]`)
	themePattern      = regexp.MustCompile(`(?m)^\s*html_theme\s*=\s*['"]([^'"]*)['"]`)
	staticPathPattern = regexp.MustCompile(`(?s)html_static_path\s*=\s*\[(.*?)\]`)
	wordPattern       = regexp.MustCompile(`[a-z0-9]+`)
)

func configurationChecks() []Check {
	return []Check{
		{
			ID:          "configuration.conf_file",
			Category:    CategoryConfiguration,
			Description: "conf.py exists and is non-empty",
			Run:         checkConfFile,
		},
		{
			ID:          "configuration.settings",
			Category:    CategoryConfiguration,
			Description: "conf.py assigns every required setting",
			Run:         checkSettings,
		},
		{
			ID:          "configuration.extensions",
			Category:    CategoryConfiguration,
			Description: "conf.py enables every expected extension",
			Run:         checkExtensions,
		},
		{
			ID:          "configuration.theme",
			Category:    CategoryConfiguration,
			Description: "html_theme is the expected theme",
			Run:         checkTheme,
		},
		{
			ID:          "configuration.static",
			Category:    CategoryConfiguration,
			Description: "conf.py references the static path and theme assets",
			Run:         checkStaticConfig,
		},
		{
			ID:          "configuration.makefile",
			Category:    CategoryConfiguration,
			Description: "Makefile declares every expected target",
			Run:         checkMakefile,
		},
		{
			ID:          "configuration.theme_output",
			Category:    CategoryConfiguration,
			Description: "built index page is rendered with the expected theme",
			Live:        true,
			Run:         checkThemeOutput,
		},
	}
}

func readConf(env *Env) (string, string, error) {
	conf, err := env.path(registry.Conf)
	if err != nil {
		return "", "", err
	}
	if err := fileutil.RequireNonEmpty(conf); err != nil {
		return "", conf, err
	}
	content, err := readFile(conf)
	return content, conf, err
}

// quoted reports whether s contains value as a Python string literal.
func quoted(s, value string) bool {
	return strings.Contains(s, "'"+value+"'") || strings.Contains(s, `"`+value+`"`)
}

func checkConfFile(_ context.Context, env *Env) error {
	_, _, err := readConf(env)
	return err
}

func checkSettings(_ context.Context, env *Env) error {
	content, conf, err := readConf(env)
	if err != nil {
		return err
	}
	settings, err := env.strings("required_settings")
	if err != nil {
		return err
	}

	var failure Failure
	for _, name := range settings {
		pattern := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=`)
		if !pattern.MatchString(content) {
			failure.AddFile(conf, "setting %s not found in %s", name, conf)
		}
	}

	// project and author are only pinned when configured
	for _, name := range []string{"project", "author"} {
		want, err := env.scalar(name)
		if err != nil || want == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?m)^\s*` + name + `\s*=\s*['"]` + regexp.QuoteMeta(want) + `['"]`)
		if !pattern.MatchString(content) {
			failure.AddFile(conf, "setting %s is not %q in %s", name, want, conf)
		}
	}
	return failure.Err()
}

func checkExtensions(_ context.Context, env *Env) error {
	content, conf, err := readConf(env)
	if err != nil {
		return err
	}
	expected, err := env.strings("extensions")
	if err != nil {
		return err
	}

	match := extensionsPattern.FindStringSubmatch(content)
	if match == nil {
		return fmt.Errorf("extensions list not found in %s", conf)
	}

	var failure Failure
	for _, ext := range expected {
		if !quoted(match[1], ext) {
			failure.AddFile(conf, "extension %s not enabled in %s", ext, conf)
		}
	}
	return failure.Err()
}

func checkTheme(_ context.Context, env *Env) error {
	content, conf, err := readConf(env)
	if err != nil {
		return err
	}
	want, err := env.scalar("theme")
	if err != nil {
		return err
	}

	match := themePattern.FindStringSubmatch(content)
	if match == nil {
		return fmt.Errorf("html_theme not set in %s", conf)
	}
	if match[1] != want {
		return fmt.Errorf("html_theme is %q, expected %q", match[1], want)
	}
	return nil
}

func checkStaticConfig(_ context.Context, env *Env) error {
	content, conf, err := readConf(env)
	if err != nil {
		return err
	}
	staticPath, err := env.scalar("static_path")
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
	match := staticPathPattern.FindStringSubmatch(content)
	switch {
	case match == nil:
		failure.AddFile(conf, "html_static_path not set in %s", conf)
	case !quoted(match[1], staticPath):
		failure.AddFile(conf, "html_static_path does not include %s", staticPath)
	}
	for _, name := range append(append([]string{}, css...), js...) {
		if !quoted(content, name) {
			failure.AddFile(conf, "%s not referenced in %s", name, conf)
		}
	}
	return failure.Err()
}

func checkMakefile(_ context.Context, env *Env) error {
	makefile, err := env.path(registry.Makefile)
	if err != nil {
		return err
	}
	if err := fileutil.RequireNonEmpty(makefile); err != nil {
		return err
	}
	content, err := readFile(makefile)
	if err != nil {
		return err
	}
	targets, err := env.strings("makefile_targets")
	if err != nil {
		return err
	}

	var failure Failure
	for _, target := range targets {
		pattern := regexp.MustCompile(`(?m)^\.PHONY:[^\n]*\s` + regexp.QuoteMeta(target) + `(\s|$)`)
		if !pattern.MatchString(content) {
			failure.AddFile(makefile, "target %s not declared .PHONY in %s", target, makefile)
		}
	}
	return failure.Err()
}

func checkThemeOutput(ctx context.Context, env *Env) error {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return err
	}
	want, err := env.scalar("theme")
	if err != nil {
		return err
	}

	index := filepath.Join(out, "index.html")
	doc, err := loadDocument(index)
	if err != nil {
		return err
	}

	if meta, ok := doc.Find(`meta[name="theme"]`).Attr("content"); ok {
		if meta != want {
			return fmt.Errorf("index.html declares theme %q, expected %q", meta, want)
		}
		return nil
	}

	var assets []string
	doc.Find("link[href], script[src]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			assets = append(assets, href)
		}
		if src, ok := sel.Attr("src"); ok {
			assets = append(assets, src)
		}
	})
	for _, asset := range assets {
		if assetNamesTheme(asset, themeNames(want)) {
			return nil
		}
	}
	return fmt.Errorf("theme %s not found in the assets of %s", want, index)
}

// assetNamesTheme reports whether one of names appears in path as whole
// words, so "_static/styles/furo.css" names furo but "furore.css" does not.
func assetNamesTheme(path string, names []string) bool {
	words := wordPattern.FindAllString(strings.ToLower(path), -1)
	for _, name := range names {
		want := wordPattern.FindAllString(strings.ToLower(name), -1)
		if len(want) == 0 {
			continue
		}
		for i := 0; i+len(want) <= len(words); i++ {
			if equalWords(words[i:i+len(want)], want) {
				return true
			}
		}
	}
	return false
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// themeNames returns the theme name and its short form, "sphinx_rtd_theme"
// giving "rtd".
func themeNames(theme string) []string {
	names := []string{theme}
	short := strings.TrimSuffix(strings.TrimPrefix(theme, "sphinx_"), "_theme")
	if short != theme && len(short) >= 3 {
		names = append(names, short)
	}
	return names
}
