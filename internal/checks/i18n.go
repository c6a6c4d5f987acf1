package checks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

const (
	catalogDomain = "docs"
	// templateDir holds .pot templates, not a language
	templateDir = "pot"
)

// Compiled catalog locations inside the html output, in lookup order.
var compiledLocaleDirs = []string{"_sources/locale", "locale"}

func i18nChecks() []Check {
	return []Check{
		{
			ID:          "i18n.locale_directory",
			Category:    CategoryI18N,
			Description: "locale directory exists",
			Run:         checkLocaleDirectory,
		},
		{
			ID:          "i18n.languages",
			Category:    CategoryI18N,
			Description: "locale directory has a directory per expected language",
			Run:         checkLanguages,
		},
		{
			ID:          "i18n.catalogs",
			Category:    CategoryI18N,
			Description: "every language has a non-empty message catalog",
			Run:         checkCatalogs,
		},
		{
			ID:          "i18n.compiled_catalogs",
			Category:    CategoryI18N,
			Description: "built site carries compiled catalogs",
			Live:        true,
			Run:         checkCompiledCatalogs,
		},
		{
			ID:          "i18n.language_switcher",
			Category:    CategoryI18N,
			Description: "index page links every expected language",
			Live:        true,
			Run:         checkLanguageSwitcher,
		},
	}
}

func localeDir(env *Env) (string, error) {
	locale, err := env.path(registry.Locale)
	if err != nil {
		return "", err
	}
	return locale, fileutil.RequireDir(locale)
}

// catalogLanguages returns the language directories under the locale root.
func catalogLanguages(locale string) ([]string, error) {
	dirs, err := fileutil.Subdirectories(locale)
	if err != nil {
		return nil, err
	}
	langs := dirs[:0]
	for _, d := range dirs {
		if d != templateDir {
			langs = append(langs, d)
		}
	}
	return langs, nil
}

func catalogPath(root, lang, ext string) string {
	return filepath.Join(root, lang, "LC_MESSAGES", catalogDomain+ext)
}

func checkLocaleDirectory(_ context.Context, env *Env) error {
	_, err := localeDir(env)
	return err
}

func checkLanguages(_ context.Context, env *Env) error {
	locale, err := localeDir(env)
	if err != nil {
		return err
	}
	langs, err := env.strings("languages")
	if err != nil {
		return err
	}

	var failure Failure
	for _, lang := range langs {
		dir := filepath.Join(locale, lang)
		if err := fileutil.RequireDir(dir); err != nil {
			failure.AddFile(dir, "language directory %s not found", dir)
		}
	}
	return failure.Err()
}

func checkCatalogs(_ context.Context, env *Env) error {
	locale, err := localeDir(env)
	if err != nil {
		return err
	}
	langs, err := catalogLanguages(locale)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		return fmt.Errorf("no language directories in %s", locale)
	}

	var failure Failure
	for _, lang := range langs {
		po := catalogPath(locale, lang, ".po")
		if err := fileutil.RequireNonEmpty(po); err != nil {
			failure.AddErr(po, err)
		}
	}
	return failure.Err()
}

func checkCompiledCatalogs(ctx context.Context, env *Env) error {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return err
	}

	var built string
	for _, name := range compiledLocaleDirs {
		dir := filepath.Join(out, filepath.FromSlash(name))
		if fileutil.RequireDir(dir) == nil {
			built = dir
			break
		}
	}
	if built == "" {
		return Skip("no locale directory in the built site")
	}

	langs, err := catalogLanguages(built)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		return fmt.Errorf("no language directories in %s", built)
	}

	var failure Failure
	for _, lang := range langs {
		mo := catalogPath(built, lang, ".mo")
		if err := fileutil.RequireNonEmpty(mo); err != nil {
			failure.AddErr(mo, err)
		}
	}
	return failure.Err()
}

func checkLanguageSwitcher(ctx context.Context, env *Env) error {
	index, err := builtFile(ctx, env, "index.html")
	if err != nil {
		return err
	}
	langs, err := env.strings("languages")
	if err != nil {
		return err
	}
	doc, err := loadDocument(index)
	if err != nil {
		return err
	}

	switcher := doc.Find("div.language-switcher")
	if switcher.Length() == 0 {
		return fmt.Errorf("no div.language-switcher in %s", index)
	}

	var failure Failure
	for _, lang := range langs {
		if switcher.Find(fmt.Sprintf(`a[hreflang=%q]`, lang)).Length() == 0 {
			failure.AddFile(index, "language switcher has no link for %s", lang)
		}
	}
	return failure.Err()
}
