package checks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/fileutil"
	"github.com/harrison/docscheck/internal/testutil"
)

// editFile rewrites root/rel, replacing the first old with replacement.
func editFile(t *testing.T, root, rel, old, replacement string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), old, "fixture %s changed", rel)
	testutil.WriteFile(t, root, rel, strings.Replace(string(data), old, replacement, 1))
}

func TestConfigurationChecks_PassOnFixture(t *testing.T) {
	env, _, _ := newTestEnv(t, nil)
	for _, id := range []string{
		"configuration.conf_file",
		"configuration.settings",
		"configuration.extensions",
		"configuration.theme",
		"configuration.static",
		"configuration.makefile",
	} {
		assert.NoError(t, runCheck(t, env, id), id)
	}
}

func TestConfFile(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		require.NoError(t, os.Remove(filepath.Join(root, "docs", "conf.py")))

		err := runCheck(t, env, "configuration.conf_file")
		require.Error(t, err)
		assert.ErrorIs(t, err, fileutil.ErrMissing)
		assert.Contains(t, err.Error(), "conf.py")
	})

	t.Run("empty", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		testutil.WriteFile(t, root, "docs/conf.py", "")

		err := runCheck(t, env, "configuration.conf_file")
		assert.ErrorIs(t, err, fileutil.ErrEmpty)
	})
}

func TestSettings(t *testing.T) {
	t.Run("missing setting", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		editFile(t, root, "docs/conf.py", "release = '1.0'\n", "")

		err := runCheck(t, env, "configuration.settings")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "setting release not found")
		assert.Len(t, FailedFiles(err), 1)
	})

	t.Run("commented out setting", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		editFile(t, root, "docs/conf.py", "release = '1.0'", "# release = '1.0'")

		assert.Error(t, runCheck(t, env, "configuration.settings"))
	})

	t.Run("pinned project matches", func(t *testing.T) {
		env, _, _ := newTestEnv(t, func(cfg *config.Config) {
			cfg.Expected["project"] = "Example"
			cfg.Expected["author"] = "Example Authors"
		})
		assert.NoError(t, runCheck(t, env, "configuration.settings"))
	})

	t.Run("pinned project differs", func(t *testing.T) {
		env, _, _ := newTestEnv(t, func(cfg *config.Config) {
			cfg.Expected["project"] = "Other"
		})
		err := runCheck(t, env, "configuration.settings")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `setting project is not "Other"`)
	})
}

func TestExtensions(t *testing.T) {
	t.Run("missing extension", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		editFile(t, root, "docs/conf.py", "    'sphinx.ext.intersphinx',\n", "")

		err := runCheck(t, env, "configuration.extensions")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sphinx.ext.intersphinx")
		assert.NotContains(t, err.Error(), "sphinx.ext.autodoc")
	})

	t.Run("double quotes", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		editFile(t, root, "docs/conf.py", "'sphinx.ext.viewcode'", `"sphinx.ext.viewcode"`)

		assert.NoError(t, runCheck(t, env, "configuration.extensions"))
	})

	t.Run("no list", func(t *testing.T) {
		env, _, root := newTestEnv(t, nil)
		testutil.WriteFile(t, root, "docs/conf.py", "project = 'Example'\n")

		err := runCheck(t, env, "configuration.extensions")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extensions list not found")
	})
}

func TestTheme(t *testing.T) {
	env, _, root := newTestEnv(t, nil)
	editFile(t, root, "docs/conf.py", "html_theme = 'sphinx_rtd_theme'", "html_theme = 'alabaster'")

	err := runCheck(t, env, "configuration.theme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"alabaster"`)

	env, _, _ = newTestEnv(t, func(cfg *config.Config) {
		cfg.Expected["theme"] = "alabaster"
	})
	assert.Error(t, runCheck(t, env, "configuration.theme"))
}

func TestStaticConfig(t *testing.T) {
	env, _, root := newTestEnv(t, nil)
	editFile(t, root, "docs/conf.py", "html_css_files = ['theme.css']\n", "")

	err := runCheck(t, env, "configuration.static")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme.css not referenced")

	env, _, root = newTestEnv(t, nil)
	editFile(t, root, "docs/conf.py", "html_static_path = ['_static']", "html_static_path = ['assets']")
	err = runCheck(t, env, "configuration.static")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html_static_path does not include _static")
}

func TestMakefile(t *testing.T) {
	env, _, root := newTestEnv(t, nil)
	editFile(t, root, "docs/Makefile", " gettext", "")

	err := runCheck(t, env, "configuration.makefile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target gettext")
	assert.Equal(t, 1, strings.Count(err.Error(), "\n")+1)

	require.NoError(t, os.Remove(filepath.Join(root, "docs", "Makefile")))
	assert.ErrorIs(t, runCheck(t, env, "configuration.makefile"), fileutil.ErrMissing)
}

func TestThemeOutput(t *testing.T) {
	t.Run("meta tag", func(t *testing.T) {
		env, _, _ := newTestEnv(t, nil)
		assert.NoError(t, runCheck(t, env, "configuration.theme_output"))
	})

	t.Run("meta tag differs", func(t *testing.T) {
		env, fake, _ := newTestEnv(t, nil)
		fake.Site.Theme = "alabaster"

		err := runCheck(t, env, "configuration.theme_output")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"alabaster"`)
	})

	assetTests := []struct {
		name string
		head string
		ok   bool
	}{
		{name: "stylesheet under theme directory", head: `<link rel="stylesheet" href="_static/sphinx_rtd_theme/css/theme.css">`, ok: true},
		{name: "script named by alias", head: `<script src="_static/js/rtd-badge.js"></script>`, ok: true},
		{name: "alias inside a longer word", head: `<link rel="stylesheet" href="_static/birtday.css">`},
		{name: "theme only in page text", head: `<title>theme provided by Read the Docs (RTD)</title>`},
	}
	for _, tt := range assetTests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, root := newTestEnv(t, nil)
			_, err := env.HTMLBuild(context.Background())
			require.NoError(t, err)
			testutil.WriteFile(t, root, "docs/_build/html/index.html",
				"<html><head>"+tt.head+"</head><body><h1>Welcome</h1></body></html>")

			err = runCheck(t, env, "configuration.theme_output")
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "theme sphinx_rtd_theme not found")
		})
	}

	t.Run("build failed", func(t *testing.T) {
		env, fake, _ := newTestEnv(t, nil)
		fake.ExitCodes = map[string]int{"html": 2}

		err := runCheck(t, env, "configuration.theme_output")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with status 2")
	})
}

func TestAssetNamesTheme(t *testing.T) {
	assert.True(t, assetNamesTheme("_static/styles/furo.css?v=1", []string{"furo"}))
	assert.True(t, assetNamesTheme("_static/styles/pydata-sphinx-theme.css", []string{"pydata_sphinx_theme"}))
	assert.False(t, assetNamesTheme("_static/furore.css", []string{"furo"}))
	assert.False(t, assetNamesTheme("_static/theme.css", []string{"sphinx_rtd_theme", "rtd"}))
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"sphinx_rtd_theme", "rtd"}, themeNames("sphinx_rtd_theme"))
	assert.Equal(t, []string{"alabaster"}, themeNames("alabaster"))
	assert.Equal(t, []string{"furo_theme", "furo"}, themeNames("furo_theme"))
	assert.Equal(t, []string{"sphinx_x_theme"}, themeNames("sphinx_x_theme"))
}
