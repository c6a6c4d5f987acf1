package checks

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/registry"
)

const (
	apiSource = "api.rst"
	apiPage   = "api.html"
)

func apiChecks() []Check {
	return []Check{
		{
			ID:          "api.file",
			Category:    CategoryAPI,
			Description: "api.rst is present and non-empty",
			Run:         checkAPIFile,
		},
		{
			ID:          "api.sections",
			Category:    CategoryAPI,
			Description: "api.rst has every expected section",
			Run:         checkAPISections,
		},
		{
			ID:          "api.modules",
			Category:    CategoryAPI,
			Description: "every expected module has an automodule directive",
			Run:         checkAPIModules,
		},
		{
			ID:          "api.references",
			Category:    CategoryAPI,
			Description: "built API page has an anchor for every expected module",
			Live:        true,
			Run:         checkAPIReferences,
		},
	}
}

func readAPISource(env *Env) (string, string, error) {
	path, err := env.inDocs(apiSource)
	if err != nil {
		return "", "", err
	}
	if err := fileutil.RequireNonEmpty(path); err != nil {
		return "", path, err
	}
	content, err := readFile(path)
	return content, path, err
}

func checkAPIFile(_ context.Context, env *Env) error {
	_, _, err := readAPISource(env)
	return err
}

func checkAPISections(_ context.Context, env *Env) error {
	content, path, err := readAPISource(env)
	if err != nil {
		return err
	}
	sections, err := env.strings("api_sections")
	if err != nil {
		return err
	}

	var failure Failure
	for _, section := range sections {
		pattern := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(section) + `\s*$`)
		if !pattern.MatchString(content) {
			failure.AddFile(path, "section %q not found in %s", section, path)
		}
	}
	return failure.Err()
}

func checkAPIModules(_ context.Context, env *Env) error {
	modules, err := env.strings("api_modules")
	if err != nil {
		return err
	}
	if len(modules) == 0 {
		return Skip("no API modules configured")
	}

	files, err := env.rstFiles()
	if err != nil {
		return err
	}
	var sources strings.Builder
	for _, path := range files {
		content, err := readFile(path)
		if err != nil {
			return err
		}
		sources.WriteString(content)
		sources.WriteByte('\n')
	}
	all := sources.String()

	var failure Failure
	for _, module := range modules {
		pattern := regexp.MustCompile(`(?m)^\s*\.\.\s+automodule::\s+` + regexp.QuoteMeta(module) + `\s*$`)
		if !pattern.MatchString(all) {
			failure.Addf("no automodule directive for %s", module)
		}
	}
	return failure.Err()
}

func checkAPIReferences(ctx context.Context, env *Env) error {
	modules, err := env.strings("api_modules")
	if err != nil {
		return err
	}
	if len(modules) == 0 {
		return Skip("no API modules configured")
	}
	if _, err := env.builtHTML(ctx); err != nil {
		return err
	}

	out, err := env.path(registry.BuildPathName("html"))
	if err != nil {
		return err
	}
	page := filepath.Join(out, apiPage)
	doc, err := parseHTMLFile(page)
	if err != nil {
		return err
	}

	ids := make(map[string]bool)
	collectIDs(doc, "module-", ids)

	var failure Failure
	for _, module := range modules {
		if !ids["module-"+module] {
			failure.AddFile(page, "no module-%s anchor in %s", module, page)
		}
	}
	return failure.Err()
}
