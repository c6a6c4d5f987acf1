package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/docscheck/internal/fileutil"
)

const (
	searchPage   = "search.html"
	searchScript = "_static/searchtools.js"
)

// Search index locations inside the html output, in lookup order.
var searchIndexCandidates = []string{
	"searchindex.js",
	"_static/searchindex.json",
	"searchindex.json",
}

func searchChecks() []Check {
	return []Check{
		{
			ID:          "search.page",
			Category:    CategorySearch,
			Description: "built site has a search page",
			Live:        true,
			Run:         checkSearchPage,
		},
		{
			ID:          "search.form",
			Category:    CategorySearch,
			Description: "search page has a search form with a query input",
			Live:        true,
			Run:         checkSearchForm,
		},
		{
			ID:          "search.script",
			Category:    CategorySearch,
			Description: "built site ships the search script or index",
			Live:        true,
			Run:         checkSearchScript,
		},
		{
			ID:          "search.index",
			Category:    CategorySearch,
			Description: "search index is present and covers the expected terms",
			Live:        true,
			Run:         checkSearchIndex,
		},
	}
}

func builtFile(ctx context.Context, env *Env, name string) (string, error) {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(out, filepath.FromSlash(name)), nil
}

func checkSearchPage(ctx context.Context, env *Env) error {
	page, err := builtFile(ctx, env, searchPage)
	if err != nil {
		return err
	}
	return fileutil.RequireFile(page)
}

func checkSearchForm(ctx context.Context, env *Env) error {
	page, err := builtFile(ctx, env, searchPage)
	if err != nil {
		return err
	}
	doc, err := loadDocument(page)
	if err != nil {
		return err
	}

	form := doc.Find("form.search")
	if form.Length() == 0 {
		return fmt.Errorf("no form.search in %s", page)
	}
	if form.Find(`input[name="q"]`).Length() == 0 {
		return fmt.Errorf("search form in %s has no input named q", page)
	}
	return nil
}

func checkSearchScript(ctx context.Context, env *Env) error {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return err
	}
	for _, name := range []string{searchScript, "searchindex.js"} {
		if fileutil.RequireFile(filepath.Join(out, filepath.FromSlash(name))) == nil {
			return nil
		}
	}
	return fmt.Errorf("neither %s nor searchindex.js found in %s", searchScript, out)
}

func checkSearchIndex(ctx context.Context, env *Env) error {
	out, err := env.builtHTML(ctx)
	if err != nil {
		return err
	}

	var path string
	for _, name := range searchIndexCandidates {
		candidate := filepath.Join(out, filepath.FromSlash(name))
		if fileutil.RequireFile(candidate) == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return fmt.Errorf("no search index in %s (looked for %s)", out, strings.Join(searchIndexCandidates, ", "))
	}
	if err := fileutil.RequireNonEmpty(path); err != nil {
		return err
	}

	content, err := readFile(path)
	if err != nil {
		return err
	}
	index, ok := decodeSearchIndex(content)
	if !ok {
		env.Logger.LogDebug(fmt.Sprintf("search index %s is not JSON, skipping key checks", path))
		return nil
	}

	keys, err := env.strings("search_index_keys")
	if err != nil {
		return err
	}
	terms, err := env.strings("search_terms")
	if err != nil {
		return err
	}

	var failure Failure
	for _, key := range keys {
		if _, ok := index[key]; !ok {
			failure.AddFile(path, "key %s not found in search index %s", key, path)
		}
	}

	var indexed map[string]json.RawMessage
	if raw, ok := index["terms"]; ok {
		if err := json.Unmarshal(raw, &indexed); err != nil {
			failure.AddFile(path, "terms in %s are not an object: %v", path, err)
		}
	}
	for _, term := range terms {
		if !termIndexed(indexed, term) {
			failure.AddFile(path, "term %s not found in search index %s", term, path)
		}
	}
	return failure.Err()
}

// decodeSearchIndex decodes a JSON index, unwrapping the
// Search.setIndex(...) call that Sphinx writes into searchindex.js.
func decodeSearchIndex(content string) (map[string]json.RawMessage, bool) {
	payload := strings.TrimSpace(content)
	if strings.HasPrefix(payload, "Search.setIndex(") {
		payload = strings.TrimPrefix(payload, "Search.setIndex(")
		payload = strings.TrimSuffix(payload, ";")
		payload = strings.TrimSuffix(payload, ")")
	}

	var index map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &index); err != nil {
		return nil, false
	}
	return index, true
}

// termIndexed reports whether term appears in an indexed word, or an
// indexed stem of at least four letters prefixes it.
func termIndexed(indexed map[string]json.RawMessage, term string) bool {
	term = strings.ToLower(term)
	for word := range indexed {
		word = strings.ToLower(word)
		if strings.Contains(word, term) {
			return true
		}
		if len(word) >= 4 && strings.HasPrefix(term, word) {
			return true
		}
	}
	return false
}

