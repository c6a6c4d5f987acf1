package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docscheck/internal/config"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()
	reg, err := New(root, config.DefaultConfig())
	require.NoError(t, err)
	return reg, root
}

func TestNewResolvesDefaultPaths(t *testing.T) {
	reg, root := newTestRegistry(t)

	tests := []struct {
		name string
		want string
	}{
		{ProjectRoot, root},
		{Docs, filepath.Join(root, "docs")},
		{Build, filepath.Join(root, "docs", "_build")},
		{Doctrees, filepath.Join(root, "docs", "_build", "doctrees")},
		{Static, filepath.Join(root, "docs", "_static")},
		{Templates, filepath.Join(root, "docs", "_templates")},
		{Images, filepath.Join(root, "docs", "_static", "images")},
		{Fonts, filepath.Join(root, "docs", "_static", "fonts")},
		{Locale, filepath.Join(root, "docs", "locale")},
		{Conf, filepath.Join(root, "docs", "conf.py")},
		{Makefile, filepath.Join(root, "docs", "Makefile")},
		{"build_html", filepath.Join(root, "docs", "_build", "html")},
		{HTMLStatic, filepath.Join(root, "docs", "_build", "html", "_static")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.PathFor(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalFormats(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		assert.Equal(t, []string{"html", "latex", "man", "texinfo"}, reg.Formats())
		for _, format := range []string{"latex", "man", "texinfo"} {
			assert.True(t, reg.IsOptionalFormat(format), format)
			_, err := reg.PathFor(BuildPathName(format))
			assert.ErrorIs(t, err, ErrUnknownResource, format)
		}
		assert.False(t, reg.IsOptionalFormat("html"))
	})

	t.Run("required builder is registered", func(t *testing.T) {
		root := t.TempDir()
		cfg := config.DefaultConfig()
		cfg.Expected["optional_builders"] = []interface{}{"html", "man"}
		reg, err := New(root, cfg)
		require.NoError(t, err)

		assert.False(t, reg.IsOptionalFormat("html"))
		got, err := reg.PathFor("build_latex")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "docs", "_build", "latex"), got)
		_, err = reg.PathFor("build_man")
		assert.Error(t, err)
	})
}

func TestPathsAreAbsoluteAndUnderRoot(t *testing.T) {
	reg, root := newTestRegistry(t)

	for _, name := range reg.Names() {
		p, err := reg.PathFor(name)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(p), "%s should be absolute: %s", name, p)
		assert.True(t, strings.HasPrefix(p, root), "%s should be under the root: %s", name, p)
	}
}

func TestPathForIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.PathFor(Static)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := reg.PathFor(Static)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNewDoesNotTouchFilesystem(t *testing.T) {
	reg, root := newTestRegistry(t)
	require.NotNil(t, reg)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStaticFilesHaveStylesheetAndScript(t *testing.T) {
	reg, _ := newTestRegistry(t)

	files := reg.RequiredFiles("static_files")
	require.NotEmpty(t, files)

	var css, js bool
	for _, f := range files {
		css = css || strings.HasSuffix(f, ".css")
		js = js || strings.HasSuffix(f, ".js")
	}
	assert.True(t, css, "static_files should list a stylesheet")
	assert.True(t, js, "static_files should list a script")
}

func TestRequiredFilesUnknownCategory(t *testing.T) {
	reg, _ := newTestRegistry(t)

	files := reg.RequiredFiles("no_such_category")
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestRequiredFilesReturnsCopy(t *testing.T) {
	reg, _ := newTestRegistry(t)

	files := reg.RequiredFiles("static_files")
	files[0] = "tampered.css"

	assert.Equal(t, "theme.css", reg.RequiredFiles("static_files")[0])
}

func TestExpectedValue(t *testing.T) {
	reg, _ := newTestRegistry(t)

	theme, err := reg.ExpectedValue("theme")
	require.NoError(t, err)
	assert.Equal(t, "sphinx_rtd_theme", theme.String())
	assert.False(t, theme.IsList())

	langs, err := reg.ExpectedValue("languages")
	require.NoError(t, err)
	assert.True(t, langs.IsList())
	assert.Contains(t, langs.Strings(), "en")
	assert.Contains(t, langs.Strings(), "zh_CN")

	maxLen, err := reg.ExpectedValue("max_line_length")
	require.NoError(t, err)
	n, err := maxLen.Int()
	require.NoError(t, err)
	assert.Equal(t, 120, n)
}

func TestExpectedValueReturnsCopy(t *testing.T) {
	reg, _ := newTestRegistry(t)

	v, err := reg.ExpectedValue("extensions")
	require.NoError(t, err)
	list := v.Strings()
	list[0] = "tampered"

	again, err := reg.ExpectedValue("extensions")
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", again.Strings()[0])
}

func TestUnknownLookups(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.PathFor("nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownResource))
	var resErr *UnknownResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "nonexistent", resErr.Name)
	assert.Contains(t, err.Error(), "nonexistent")

	_, err = reg.ExpectedValue("nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.False(t, errors.Is(err, ErrUnknownResource))
	var keyErr *UnknownKeyError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, "nonexistent", keyErr.Key)
}

func TestMustPathForPanicsOnUnknown(t *testing.T) {
	reg, _ := newTestRegistry(t)

	assert.NotPanics(t, func() { reg.MustPathFor(Docs) })
	assert.Panics(t, func() { reg.MustPathFor("nonexistent") })
}

func TestNewRootErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name string
		root string
		cfg  *config.Config
	}{
		{"nil config", t.TempDir(), nil},
		{"empty root", "", config.DefaultConfig()},
		{"missing root", filepath.Join(t.TempDir(), "missing"), config.DefaultConfig()},
		{"root is a file", file, config.DefaultConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.root, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestNewRejectsBadExpectedValues(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Expected["builders"] = []interface{}{"html", "../escape"}

	_, err := New(t.TempDir(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = config.DefaultConfig()
	cfg.Expected["languages"] = []interface{}{[]interface{}{"en"}}
	_, err = New(t.TempDir(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected.languages")
}

func TestFormatsHTMLFirstAndDeduplicated(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Expected["builders"] = []interface{}{"latex", "html", "latex", "epub"}

	reg, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"html", "latex", "epub"}, reg.Formats())

	_, err = reg.PathFor(BuildPathName("epub"))
	assert.NoError(t, err)
	_, err = reg.PathFor(BuildPathName("man"))
	assert.True(t, errors.Is(err, ErrUnknownResource))
}

func TestCustomPathsFromConfig(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Paths.Docs = "documentation"
	cfg.Paths.Build = "site"
	cfg.Paths.Static = "assets"

	reg, err := New(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "documentation", "assets"), reg.MustPathFor(Static))
	assert.Equal(t, filepath.Join(root, "site", "html"), reg.MustPathFor(BuildPathName("html")))
}

func TestListingAccessorsSorted(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for _, list := range [][]string{reg.Names(), reg.Keys(), reg.Categories()} {
		require.NotEmpty(t, list)
		for i := 1; i < len(list); i++ {
			assert.Less(t, list[i-1], list[i])
		}
	}
	assert.Contains(t, reg.Categories(), "build_output")
	assert.Contains(t, reg.Keys(), "search_index_keys")
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	t.Setenv(config.RootEnvVar, "")
	t.Setenv(config.LogLevelEnvVar, "")
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigFileName),
		[]byte("expected:\n  theme: furo\n"), 0644))

	reg, cfg, err := Load(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, root, reg.RootPath())

	theme, err := reg.ExpectedValue("theme")
	require.NoError(t, err)
	assert.Equal(t, "furo", theme.String())
}

func TestLoadWrapsConfigErrors(t *testing.T) {
	root := t.TempDir()
	t.Setenv(config.RootEnvVar, "")
	t.Setenv(config.LogLevelEnvVar, "")
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte("log_level: loud\n"), 0644))

	_, _, err := Load(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
