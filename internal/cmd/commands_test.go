package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docscheck/internal/checks"
	"github.com/harrison/docscheck/internal/history"
	"github.com/harrison/docscheck/internal/models"
)

func TestListCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		notContain []string
		wantErr    bool
	}{
		{
			name:     "all checks",
			args:     []string{"list"},
			contains: append([]string{"static.files", "build.html", "[live]"}, checks.Categories()...),
		},
		{
			name:       "one category",
			args:       []string{"list", "search"},
			contains:   []string{"search.page", "search.index"},
			notContain: []string{"static.files"},
		},
		{
			name:       "live only",
			args:       []string{"list", "--live-only"},
			contains:   []string{"build.html", "content.links"},
			notContain: []string{"static.files", "api.file"},
		},
		{
			name:     "no live checks selected",
			args:     []string{"list", "--live-only", "static.files"},
			contains: []string{"No checks selected"},
		},
		{
			name:    "unknown selector",
			args:    []string{"list", "missing"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRegistryCommand_Text(t *testing.T) {
	root := newProject(t)

	out, _, err := executeCommand(t, "registry", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Root: "+root)
	assert.Contains(t, out, "Formats: html")
	assert.Contains(t, out, filepath.Join(root, "docs", "_static"))
	assert.Contains(t, out, "theme: sphinx_rtd_theme")
	assert.Contains(t, out, "project_files: README.md, LICENSE, CONTRIBUTING.md")
}

func TestRegistryCommand_JSON(t *testing.T) {
	root := newProject(t)

	out, _, err := executeCommand(t, "registry", "--root", root, "--json")
	require.NoError(t, err)

	var dump registryDump
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	assert.Equal(t, root, dump.Root)
	require.NotEmpty(t, dump.Formats)
	assert.Equal(t, "html", dump.Formats[0])
	assert.Equal(t, filepath.Join(root, "docs"), dump.Paths["docs"])
	assert.Equal(t, filepath.Join(root, "docs", "_build", "html"), dump.Paths["build_html"])
	assert.Equal(t, "sphinx_rtd_theme", dump.Expected["theme"])
	assert.Equal(t, []string{"README.md", "LICENSE", "CONTRIBUTING.md"}, dump.RequiredFiles["project_files"])
}

func TestRegistryCommand_RejectsArgs(t *testing.T) {
	root := newProject(t)

	_, _, err := executeCommand(t, "registry", "--root", root, "extra")
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)

	out, _, err := executeCommand(t, "build", "--root", root, "html")
	require.NoError(t, err)
	assert.Contains(t, out, "Building 1 format:")
	assert.Contains(t, out, "[1/1] html")
	assert.Contains(t, out, "Built 1 format")
	assert.Equal(t, 1, fake.Builds("html"))
	assert.FileExists(t, filepath.Join(root, "docs", "_build", "html", "index.html"))
}

func TestBuildCommand_AllFormats(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)

	out, _, err := executeCommand(t, "build", "--root", root)
	require.NoError(t, err)
	for _, call := range fake.Calls() {
		assert.NotContains(t, call, "-W")
	}
	assert.Equal(t, 1, fake.Builds("html"))
	assert.Contains(t, out, "html")
}

func TestBuildCommand_StrictAndClean(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)

	_, _, err := executeCommand(t, "build", "--root", root, "--strict", "--clean", "html")
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "-M", "clean runs first")
	assert.Contains(t, calls[1], "-W")
	assert.Equal(t, 1, fake.Builds("clean"))
}

func TestBuildCommand_Failure(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)
	fake.ExitCodes = map[string]int{"html": 1}
	fake.Stderr = map[string]string{"html": "index.rst:3: ERROR: Unknown directive type\n"}

	out, stderr, err := executeCommand(t, "build", "--root", root, "html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuildFailed), "got %v", err)
	assert.Contains(t, out, "html: exit status 1")
	assert.NotContains(t, out, "Built 1 format")
	assert.Contains(t, out, "1 of 1 format failed")
	assert.Contains(t, stderr, "Unknown directive type")
}

func TestBuildCommand_ToolUnavailable(t *testing.T) {
	root := newProject(t)
	fake := useFakeSphinx(t)
	fake.Err = errors.New("exec: sphinx-build: not found")

	out, _, err := executeCommand(t, "build", "--root", root, "html")
	require.ErrorIs(t, err, ErrBuildFailed)
	assert.Contains(t, out, "not found")
}

func TestHistoryCommand_NoDatabase(t *testing.T) {
	root := newProject(t)

	out, _, err := executeCommand(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found")
	assert.Contains(t, out, filepath.Join(root, ".docscheck", "history.db"))
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func indexOf(s, substr string) int {
	return strings.Index(s, substr)
}

// seedHistory records two runs of the same check, the newer one failing.
func seedHistory(t *testing.T, root string) (string, string) {
	t.Helper()
	store, err := history.NewStore(filepath.Join(root, ".docscheck", "history.db"))
	require.NoError(t, err)
	defer store.Close()

	older := &models.Report{RunID: "run-older", ProjectRoot: root, Results: []models.CheckResult{
		{ID: "static.files", Category: "static", Status: models.StatusPass},
	}}
	newer := &models.Report{RunID: "run-newer", ProjectRoot: root, Results: []models.CheckResult{
		{ID: "static.files", Category: "static", Status: models.StatusFail, Message: "file theme.js: empty"},
		{ID: "build.html", Category: "build", Status: models.StatusSkip, Message: checks.LiveDisabledReason},
	}}
	older.StartedAt = mustTime(t, "2026-05-01T10:00:00Z")
	newer.StartedAt = mustTime(t, "2026-05-02T10:00:00Z")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, store.RecordRun(ctx, older))
	require.NoError(t, store.RecordRun(ctx, newer))
	return older.RunID, newer.RunID
}

func TestHistoryCommand(t *testing.T) {
	root := newProject(t)
	older, newer := seedHistory(t, root)

	t.Run("recent runs", func(t *testing.T) {
		out, _, err := executeCommand(t, "history", "--root", root)
		require.NoError(t, err)
		assert.Contains(t, out, older)
		assert.Contains(t, out, newer)
		assert.Less(t, indexOf(out, newer), indexOf(out, older), "newest first")
	})

	t.Run("limit", func(t *testing.T) {
		out, _, err := executeCommand(t, "history", "--root", root, "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, out, newer)
		assert.NotContains(t, out, older)
	})

	t.Run("one run", func(t *testing.T) {
		out, _, err := executeCommand(t, "history", "--root", root, newer)
		require.NoError(t, err)
		assert.Contains(t, out, "static.files: file theme.js: empty")
		assert.Contains(t, out, "build.html")
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := executeCommand(t, "history", "--root", root, "run-missing")
		require.ErrorIs(t, err, history.ErrRunNotFound)
	})

	t.Run("check history", func(t *testing.T) {
		out, _, err := executeCommand(t, "history", "--root", root, "--check", "static.files")
		require.NoError(t, err)
		assert.Contains(t, out, "History of static.files")
		assert.Contains(t, out, older)
		assert.Contains(t, out, newer)
	})

	t.Run("check without records", func(t *testing.T) {
		out, _, err := executeCommand(t, "history", "--root", root, "--check", "api.file")
		require.NoError(t, err)
		assert.Contains(t, out, "No recorded results for api.file")
	})
}

func TestHistoryCommand_Schema(t *testing.T) {
	root := newProject(t)
	seedHistory(t, root)

	out, _, err := executeCommand(t, "history", "--root", root, "--schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Database path: "+filepath.Join(root, ".docscheck", "history.db"))
	assert.Contains(t, out, "Schema version: 2")
	assert.Contains(t, out, "Initial schema with runs and check_results")
	assert.Contains(t, out, "Index check results for per-check history")
}

func TestHistoryCommand_EmptyDatabase(t *testing.T) {
	root := newProject(t)
	dbPath := filepath.Join(root, ".docscheck", "history.db")
	store, err := history.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}
