// Package testutil builds documentation projects and fake build tools for
// tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Languages is the language set the fixture project ships catalogs for.
var Languages = []string{"en", "es", "fr", "de", "ja", "zh_CN", "zh_TW"}

// ProjectOptions varies the fixture project.
type ProjectOptions struct {
	// Theme is written as html_theme (default sphinx_rtd_theme)
	Theme string
	// APIModules get an automodule directive in api.rst
	APIModules []string
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := writeFile(path, content); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// WriteProject writes a documentation project under root that passes every
// static check with the default configuration.
func WriteProject(t testing.TB, root string) {
	t.Helper()
	WriteProjectWith(t, root, ProjectOptions{})
}

// WriteProjectWith writes the fixture project with opts applied.
func WriteProjectWith(t testing.TB, root string, opts ProjectOptions) {
	t.Helper()
	if opts.Theme == "" {
		opts.Theme = "sphinx_rtd_theme"
	}

	files := map[string]string{
		"README.md":       "# Example\n\nExample project documentation.\n",
		"LICENSE":         "MIT License\n",
		"CONTRIBUTING.md": "# Contributing\n\nOpen a pull request.\n",

		"docs/conf.py":   confPy(opts.Theme),
		"docs/Makefile":  makefile,
		"docs/index.rst": indexRST,

		"docs/getting_started.rst": page("Getting Started", "Start with the installation guide."),
		"docs/installation.rst":    page("Installation", "Installation uses pip."),
		"docs/usage.rst":           page("Usage", "Usage is covered by the examples."),
		"docs/api.rst":             apiRST(opts.APIModules),
		"docs/examples.rst":        page("Examples", "Examples show configuration options."),
		"docs/contributing.rst":    page("Contributing", "Contributing guidelines live in the repository."),
		"docs/changelog.rst":       page("Changelog", "1.0 "+strings.Repeat("long changelog entry ", 10)),

		"docs/_static/theme.css":        "body { color: #333; }\n",
		"docs/_static/theme.js":         "document.documentElement.classList.add('js');\n",
		"docs/_static/images/logo.png":  "\x89PNG\r\n\x1a\n",
		"docs/_static/fonts/body.woff2": "wOF2",
		"docs/_templates/layout.html":   layoutHTML,
		"docs/locale/pot/docs.pot":      "msgid \"\"\nmsgstr \"\"\n",
	}
	for _, lang := range Languages {
		files["docs/locale/"+lang+"/LC_MESSAGES/docs.po"] = fmt.Sprintf("msgid \"\"\nmsgstr \"\"\n\"Language: %s\\n\"\n", lang)
	}

	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
}

func page(title, body string) string {
	return title + "\n" + strings.Repeat("=", len(title)) + "\n\n" + body + "\n"
}

func confPy(theme string) string {
	return `project = 'Example'
author = 'Example Authors'
release = '1.0'

extensions = [
    'sphinx.ext.autodoc',
    'sphinx.ext.napoleon',
    'sphinx.ext.viewcode',
    'sphinx.ext.intersphinx',
]

templates_path = ['_templates']
locale_dirs = ['locale/']

html_theme = '` + theme + `'
html_static_path = ['_static']
html_css_files = ['theme.css']
html_js_files = ['theme.js']
`
}

const makefile = `SPHINXBUILD ?= sphinx-build
SOURCEDIR = .
BUILDDIR = _build

.PHONY: help clean html dirhtml singlehtml pickle json htmlhelp qthelp devhelp epub latex latexpdf
.PHONY: latexpdfja text man texinfo info gettext changes linkcheck doctest coverage xml pseudoxml

help:
	@$(SPHINXBUILD) -M help "$(SOURCEDIR)" "$(BUILDDIR)"

%:
	@$(SPHINXBUILD) -M $@ "$(SOURCEDIR)" "$(BUILDDIR)"
`

const indexRST = `Welcome
=======

Installation, usage, API, examples, configuration and contributing.

Build the site with::

    make html

.. code-block:: python

    import example

.. toctree::
   :maxdepth: 2

   getting_started
   installation
   usage
   api
   examples
   contributing
   changelog
`

func apiRST(modules []string) string {
	var b strings.Builder
	b.WriteString("API Reference\n=============\n\nModules\n-------\n\n")
	for _, m := range modules {
		fmt.Fprintf(&b, ".. automodule:: %s\n   :members:\n\n", m)
	}
	b.WriteString("Submodules\n----------\n\nThe API is documented per module.\n\n")
	b.WriteString("Subpackages\n-----------\n\nNone yet.\n")
	return b.String()
}

const layoutHTML = `{% extends "!layout.html" %}
{% block doctype %}{{ super() }}{% endblock %}
{% block htmltag %}{{ super() }}{% endblock %}
{% block head %}
  {{ super() }}
  <link rel="stylesheet" href="{{ pathto('_static/theme.css', 1) }}">
{% endblock %}
{% block body %}{{ super() }}{% endblock %}
{% block header %}{{ super() }}{% endblock %}
{% block content %}{{ super() }}{% endblock %}
{% block footer %}{{ super() }}{% endblock %}
{% block scripts %}
  {{ super() }}
  <script src="{{ pathto('_static/theme.js', 1) }}"></script>
{% endblock %}
`
