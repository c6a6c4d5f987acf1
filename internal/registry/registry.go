// Package registry holds the expected paths, values and required files that
// every documentation check reads.
//
// A Registry is built once per process from the project root and its
// configuration, then passed explicitly to each check. It never changes after
// construction: accessors return copies, and lookups of names that were never
// registered fail with typed errors rather than zero values.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/docscheck/internal/config"
)

// Logical resource names registered for every project.
const (
	ProjectRoot = "project_root"
	Docs        = "docs"
	Build       = "build"
	Doctrees    = "doctrees"
	Static      = "static"
	Templates   = "templates"
	Images      = "images"
	Fonts       = "fonts"
	Locale      = "locale"
	Conf        = "conf"
	Makefile    = "makefile"
	HTMLStatic  = "html_static"
)

// BuildPathName returns the logical name of a format's output directory,
// e.g. "build_html".
func BuildPathName(format string) string {
	return "build_" + format
}

// Registry is the read-only table of paths and expected values.
type Registry struct {
	root     string
	paths    map[string]string
	expected map[string]Value
	required map[string][]string
	formats  []string
	optional map[string]bool
}

// Load locates the project root from startDir, loads its configuration and
// builds the Registry. Any failure is reported as a *ConfigurationError.
func Load(startDir string) (*Registry, *config.Config, error) {
	root, cfg, err := config.Load(startDir)
	if err != nil {
		return nil, nil, &ConfigurationError{Message: "load project configuration", Err: err}
	}

	reg, err := New(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

// New builds a Registry rooted at root. It only reads the filesystem to
// confirm the root exists; nothing is created or written.
func New(root string, cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, &ConfigurationError{Message: "nil configuration"}
	}
	if root == "" {
		return nil, &ConfigurationError{Message: "empty project root"}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("resolve project root %q", root), Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("project root %s cannot be located", absRoot), Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigurationError{Message: fmt.Sprintf("project root %s is not a directory", absRoot)}
	}

	r := &Registry{
		root:     absRoot,
		paths:    make(map[string]string),
		expected: make(map[string]Value, len(cfg.Expected)),
		required: make(map[string][]string, len(cfg.RequiredFiles)),
	}

	for key, raw := range cfg.Expected {
		v, err := newValue(raw)
		if err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("expected.%s", key), Err: err}
		}
		r.expected[key] = v
	}

	for category, files := range cfg.RequiredFiles {
		r.required[category] = append([]string(nil), files...)
	}

	formats, err := builderFormats(r.expected["builders"])
	if err != nil {
		return nil, err
	}
	r.formats = formats
	r.optional = optionalFormats(r.expected["optional_builders"])

	r.registerPaths(cfg.Paths)
	return r, nil
}

// builderFormats returns the configured builders with html always first.
func builderFormats(v Value) ([]string, error) {
	formats := []string{"html"}
	seen := map[string]bool{"html": true}

	for _, f := range v.Strings() {
		f = strings.TrimSpace(f)
		if f == "" || strings.ContainsAny(f, `/\`) || f == "." || f == ".." {
			return nil, &ConfigurationError{Message: fmt.Sprintf("invalid builder format %q", f)}
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// optionalFormats returns the builders whose output a run need not produce.
// html is never optional.
func optionalFormats(v Value) map[string]bool {
	optional := make(map[string]bool)
	for _, f := range v.Strings() {
		if f = strings.TrimSpace(f); f != "" && f != "html" {
			optional[f] = true
		}
	}
	return optional
}

func (r *Registry) registerPaths(p config.PathsConfig) {
	docs := r.resolve(p.Docs)
	build := r.resolve(p.Build)
	static := filepath.Join(docs, p.Static)

	r.paths[ProjectRoot] = r.root
	r.paths[Docs] = docs
	r.paths[Build] = build
	r.paths[Doctrees] = r.resolve(p.Doctrees)
	r.paths[Static] = static
	r.paths[Templates] = filepath.Join(docs, p.Templates)
	r.paths[Images] = filepath.Join(static, "images")
	r.paths[Fonts] = filepath.Join(static, "fonts")
	r.paths[Locale] = filepath.Join(docs, p.Locale)
	r.paths[Conf] = filepath.Join(docs, "conf.py")
	r.paths[Makefile] = filepath.Join(docs, "Makefile")

	// optional builders may never run, so their output is not a resource
	for _, format := range r.formats {
		if !r.optional[format] {
			r.paths[BuildPathName(format)] = filepath.Join(build, format)
		}
	}
	r.paths[HTMLStatic] = filepath.Join(build, "html", "_static")
}

// resolve anchors a configured path at the project root
func (r *Registry) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.root, p)
}

// RootPath returns the absolute project root.
func (r *Registry) RootPath() string {
	return r.root
}

// PathFor returns the absolute path registered under name.
func (r *Registry) PathFor(name string) (string, error) {
	p, ok := r.paths[name]
	if !ok {
		return "", &UnknownResourceError{Name: name}
	}
	return p, nil
}

// MustPathFor is PathFor for names registered for every project
// (the package constants). It panics on unknown names.
func (r *Registry) MustPathFor(name string) string {
	p, err := r.PathFor(name)
	if err != nil {
		panic(err)
	}
	return p
}

// ExpectedValue returns the expected configuration value for key.
func (r *Registry) ExpectedValue(key string) (Value, error) {
	v, ok := r.expected[key]
	if !ok {
		return Value{}, &UnknownKeyError{Key: key}
	}
	return Value{scalar: v.scalar, list: append([]string(nil), v.list...), isList: v.isList}, nil
}

// RequiredFiles returns the ordered required file names for category.
// Unknown categories yield an empty slice.
func (r *Registry) RequiredFiles(category string) []string {
	files := r.required[category]
	out := make([]string, len(files))
	copy(out, files)
	return out
}

// Formats returns the registered builder formats, html first.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.formats...)
}

// IsOptionalFormat reports whether format is listed in optional_builders.
func (r *Registry) IsOptionalFormat(format string) bool {
	return r.optional[format]
}

// Names returns every registered logical resource name, sorted.
func (r *Registry) Names() []string {
	return sortedKeys(r.paths)
}

// Keys returns every registered expected-value key, sorted.
func (r *Registry) Keys() []string {
	return sortedKeys(r.expected)
}

// Categories returns every required-file category, sorted.
func (r *Registry) Categories() []string {
	return sortedKeys(r.required)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
