package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docscheck/internal/checks"
	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/models"
	"github.com/harrison/docscheck/internal/registry"
)

func TestRunCommand_StaticChecksPass(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)

	out, _, err := executeCommand(t, "run", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Check Summary")
	assert.Contains(t, out, "SKIP build.html")
	assert.Empty(t, fake.Calls(), "live checks never build without live mode")
}

func TestRunCommand_LiveModes(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
	}{
		{name: "live flag", args: []string{"--live"}},
		{name: "TEST_DOCS", env: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t)
			fake := useFakeSphinx(t)
			t.Setenv(config.LiveEnvVar, tt.env)

			args := append([]string{"run", "--root", root, "build.html"}, tt.args...)
			out, _, err := executeCommand(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "PASS build.html")
			assert.Equal(t, 1, fake.Builds("html"))
		})
	}
}

func TestRunCommand_LiveFlagOverridesEnv(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)
	t.Setenv(config.LiveEnvVar, "1")

	_, _, err := executeCommand(t, "run", "--root", root, "--live=false", "build.html")
	require.NoError(t, err)
	assert.Empty(t, fake.Calls())
}

func TestRunCommand_FailingCheck(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))

	out, stderr, err := executeCommand(t, "run", "--root", root, "content.project_files")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksFailed), "got %v", err)
	assert.Contains(t, err.Error(), "1 of 1")
	assert.Contains(t, out, "README.md")
	assert.Contains(t, stderr, "content.project_files failed")
	assert.Contains(t, stderr, "1. README.md")

	detail := filepath.Join(root, ".docscheck", "logs", "checks", "content.project_files.log")
	assert.FileExists(t, detail)
}

func TestRunCommand_UnknownSelector(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)

	_, _, err := executeCommand(t, "run", "--root", root, "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown check or category "nonsense"`)
}

func TestRunCommand_LiveOnlySelectionWarns(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)

	_, stderr, err := executeCommand(t, "run", "--root", root, "search")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Live checks disabled")
	assert.Contains(t, stderr, config.LiveEnvVar)
}

func TestRunCommand_MixedSelectionDoesNotWarn(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)

	_, stderr, err := executeCommand(t, "run", "--root", root, "static")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Live checks disabled")
}

func TestRunCommand_Report(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	_, _, err := executeCommand(t, "run", "--root", root, "--report", reportPath, "static", "api")
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))

	selected, err := checks.Select(checks.All(), "static", "api")
	require.NoError(t, err)
	require.Len(t, report.Results, len(selected))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, root, report.ProjectRoot)
	assert.False(t, report.Live)
	for i, r := range report.Results {
		assert.Equal(t, selected[i].ID, r.ID)
	}
}

func TestRunCommand_ConfigFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		explicit bool
	}{
		{
			name:    "yaml in root",
			file:    config.ConfigFileName,
			content: "expected:\n  theme: furo\n",
		},
		{
			name:    "toml in root",
			file:    config.TOMLConfigFileName,
			content: "[expected]\ntheme = \"furo\"\n",
		},
		{
			name:     "explicit config path",
			file:     "ci/docs.yaml",
			content:  "expected:\n  theme: furo\n",
			explicit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t)
			useFakeSphinx(t)
			path := filepath.Join(root, filepath.FromSlash(tt.file))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			args := []string{"run", "--root", root, "configuration.theme"}
			if tt.explicit {
				args = append(args, "--config", path)
			}
			out, _, err := executeCommand(t, args...)
			require.ErrorIs(t, err, ErrChecksFailed)
			assert.Contains(t, out, `expected "furo"`)
		})
	}
}

func TestRunCommand_MalformedConfig(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte("expected: [unclosed\n"), 0644))

	_, _, err := executeCommand(t, "run", "--root", root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrConfiguration), "got %v", err)
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, _, err := executeCommand(t, "run", "--root", root, "--record", "--report", reportPath, "static.directory")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".docscheck", "history.db"))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))

	out, _, err := executeCommand(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, report.RunID)
	assert.True(t, strings.Contains(out, "static"), out)
}

func TestRunCommand_HistoryEnabledInConfig(t *testing.T) {
	root := newProject(t)
	useFakeSphinx(t)
	cfg := "history:\n  enabled: true\n  db_path: state/runs.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte(cfg), 0644))

	_, _, err := executeCommand(t, "run", "--root", root, "static.directory")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "state", "runs.db"))
}

func TestLiveCheckIDs(t *testing.T) {
	selected := []checks.Check{
		{ID: "static.files"},
		{ID: "build.html", Live: true},
		{ID: "search.page", Live: true},
	}
	assert.Equal(t, []string{"build.html", "search.page"}, liveCheckIDs(selected))
	assert.Empty(t, liveCheckIDs(selected[:1]))
}
