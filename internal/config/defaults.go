package config

// defaultExpected returns the expected-value table for a conventional
// Sphinx project using the Read the Docs theme.
func defaultExpected() map[string]interface{} {
	return map[string]interface{}{
		"project": "",
		"author":  "",
		"theme":   "sphinx_rtd_theme",
		"extensions": []interface{}{
			"sphinx.ext.autodoc",
			"sphinx.ext.napoleon",
			"sphinx.ext.viewcode",
			"sphinx.ext.intersphinx",
		},
		"languages":         []interface{}{"en", "es", "fr", "de", "ja", "zh_CN", "zh_TW"},
		"builders":          []interface{}{"html", "latex", "man", "texinfo"},
		"optional_builders": []interface{}{"latex", "man", "texinfo"},
		"static_path":       "_static",
		"css_files":         []interface{}{"theme.css"},
		"js_files":          []interface{}{"theme.js"},
		"required_settings": []interface{}{
			"project",
			"author",
			"release",
			"extensions",
			"html_theme",
			"html_static_path",
			"html_css_files",
			"html_js_files",
		},
		"makefile_targets": []interface{}{
			"help", "clean", "html", "dirhtml", "singlehtml", "pickle", "json",
			"htmlhelp", "qthelp", "devhelp", "epub", "latex", "latexpdf",
			"latexpdfja", "text", "man", "texinfo", "info", "gettext", "changes",
			"linkcheck", "doctest", "coverage", "xml", "pseudoxml",
		},
		"api_sections": []interface{}{"API Reference", "Modules", "Submodules", "Subpackages"},
		"api_modules":  []interface{}{},
		"layout_blocks": []interface{}{
			"doctype", "htmltag", "head", "body", "header", "content", "footer", "scripts",
		},
		"search_terms":       []interface{}{"installation", "usage", "api", "examples", "configuration", "contributing"},
		"search_index_keys":  []interface{}{"docnames", "filenames", "terms", "titles", "titleterms"},
		"max_line_length":    120,
		"line_length_exempt": []interface{}{"changelog.rst"},
		"warning_markers":    []interface{}{"warning", "error", "failed", "traceback", "exception"},
		"image_extensions":   []interface{}{".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico"},
		"font_extensions":    []interface{}{".woff", ".woff2", ".ttf", ".eot", ".otf"},
	}
}

// defaultRequiredFiles returns the ordered required-file table per category
func defaultRequiredFiles() map[string][]string {
	return map[string][]string{
		"static_files":  {"theme.css", "theme.js"},
		"templates":     {"layout.html"},
		"project_files": {"README.md", "LICENSE", "CONTRIBUTING.md"},
		"rst_files": {
			"index.rst",
			"getting_started.rst",
			"installation.rst",
			"usage.rst",
			"api.rst",
			"examples.rst",
			"contributing.rst",
			"changelog.rst",
		},
		"build_output": {
			"index.html",
			"_static/theme.css",
			"_static/theme.js",
			"genindex.html",
			"search.html",
			"searchindex.js",
		},
	}
}
