package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// SiteOptions varies the built html fixture.
type SiteOptions struct {
	// Theme is announced in index.html (default sphinx_rtd_theme)
	Theme string
	// Languages get a language switcher link (default Languages)
	Languages []string
	// APIModules get a module-<name> anchor in api.html
	APIModules []string
	// SearchTerms are written into the search index (default covers the
	// default expected terms)
	SearchTerms []string
}

func (o SiteOptions) withDefaults() SiteOptions {
	if o.Theme == "" {
		o.Theme = "sphinx_rtd_theme"
	}
	if o.Languages == nil {
		o.Languages = Languages
	}
	if o.SearchTerms == nil {
		// stemmed the way the html builder stems them
		o.SearchTerms = []string{"instal", "usag", "api", "exampl", "configur", "contribut"}
	}
	return o
}

// WriteSite writes a built html site into dir.
func WriteSite(t testing.TB, dir string, opts SiteOptions) {
	t.Helper()
	if err := writeSite(dir, opts); err != nil {
		t.Fatalf("failed to write site: %v", err)
	}
}

func writeSite(dir string, opts SiteOptions) error {
	opts = opts.withDefaults()

	var switcher strings.Builder
	for _, lang := range opts.Languages {
		fmt.Fprintf(&switcher, "    <a hreflang=\"%s\" href=\"/%s/\">%s</a>\n", lang, lang, lang)
	}

	var anchors strings.Builder
	for _, m := range opts.APIModules {
		fmt.Fprintf(&anchors, "  <section id=\"module-%s\"><h2>%s</h2></section>\n", m, m)
	}

	terms := make([]string, 0, len(opts.SearchTerms))
	for i, term := range opts.SearchTerms {
		terms = append(terms, fmt.Sprintf("%q:[%d]", term, i%2))
	}

	files := map[string]string{
		"index.html": fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="theme" content="%s">
  <title>Example</title>
  <link rel="stylesheet" href="_static/theme.css">
</head>
<body>
  <div class="language-switcher">
%s  </div>
  <h1>Welcome</h1>
  <script src="_static/theme.js"></script>
</body>
</html>
`, opts.Theme, switcher.String()),
		"search.html": `<!DOCTYPE html>
<html>
<body>
  <form class="search" action="search.html" method="get">
    <input type="text" name="q">
    <input type="submit" value="Go">
  </form>
</body>
</html>
`,
		"api.html": fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <h1>API Reference</h1>
%s</body>
</html>
`, anchors.String()),
		"genindex.html":  "<!DOCTYPE html>\n<html><body><h1>Index</h1></body></html>\n",
		"searchindex.js": fmt.Sprintf(`Search.setIndex({"docnames":["index"],"filenames":["index.rst"],"terms":{%s},"titles":["Welcome"],"titleterms":{"welcom":0}})`, strings.Join(terms, ",")),

		"_static/theme.css":      "body { color: #333; }\n",
		"_static/theme.js":       "document.documentElement.classList.add('js');\n",
		"_static/searchtools.js": "var Search = {};\n",
	}
	for _, lang := range opts.Languages {
		files["_sources/locale/"+lang+"/LC_MESSAGES/docs.mo"] = "\xde\x12\x04\x95"
	}

	for rel, content := range files {
		if err := writeFile(filepath.Join(dir, filepath.FromSlash(rel)), content); err != nil {
			return err
		}
	}
	return nil
}
