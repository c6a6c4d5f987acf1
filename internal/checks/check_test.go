package checks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/testutil"
)

// newTestEnv writes the fixture project and wires an Env over it with the
// fake build tool.
func newTestEnv(t *testing.T, edit func(cfg *config.Config)) (*Env, *testutil.FakeSphinx, string) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteProject(t, root)
	reg, cfg := testutil.Registry(t, root, edit)
	fake := &testutil.FakeSphinx{}
	return NewEnv(reg, testutil.Builder(reg, cfg, fake), nil), fake, root
}

// runCheck runs the check with id against env.
func runCheck(t *testing.T, env *Env, id string) error {
	t.Helper()
	c, ok := Find(All(), id)
	require.True(t, ok, "check %s not registered", id)
	return c.Run(context.Background(), env)
}

func requireSkip(t *testing.T, err error) string {
	t.Helper()
	reason, ok := IsSkip(err)
	require.True(t, ok, "expected skip, got %v", err)
	return reason
}

func TestAll_IDsAreUniqueAndPrefixed(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range All() {
		assert.False(t, seen[c.ID], "duplicate check id %s", c.ID)
		seen[c.ID] = true
		assert.True(t, strings.HasPrefix(c.ID, c.Category+"."), "%s not prefixed with %s", c.ID, c.Category)
		assert.NotEmpty(t, c.Description, c.ID)
		assert.NotNil(t, c.Run, c.ID)
	}
}

func TestAll_FollowsCategoryOrder(t *testing.T) {
	order := make(map[string]int)
	for i, c := range Categories() {
		order[c] = i
	}

	last := -1
	for _, c := range All() {
		idx, ok := order[c.Category]
		require.True(t, ok, "unknown category %s", c.Category)
		assert.GreaterOrEqual(t, idx, last, "%s out of order", c.ID)
		last = idx
	}
}

func TestAll_BuildAndSearchAreLive(t *testing.T) {
	for _, c := range All() {
		if c.Category == CategoryBuild || c.Category == CategorySearch {
			assert.True(t, c.Live, "%s should be live", c.ID)
		}
	}
	c, ok := Find(All(), "configuration.conf_file")
	require.True(t, ok)
	assert.False(t, c.Live)
}

func TestSelect(t *testing.T) {
	all := All()

	t.Run("no selectors", func(t *testing.T) {
		got, err := Select(all)
		require.NoError(t, err)
		assert.Len(t, got, len(all))
	})

	t.Run("category", func(t *testing.T) {
		got, err := Select(all, CategoryAPI)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, c := range got {
			assert.Equal(t, CategoryAPI, c.Category)
		}
	})

	t.Run("ids keep run order", func(t *testing.T) {
		got, err := Select(all, "i18n.catalogs", "configuration.theme")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "configuration.theme", got[0].ID)
		assert.Equal(t, "i18n.catalogs", got[1].ID)
	})

	t.Run("category and id overlap", func(t *testing.T) {
		got, err := Select(all, CategoryAPI, "api.file")
		require.NoError(t, err)
		want, _ := Select(all, CategoryAPI)
		assert.Len(t, got, len(want))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Select(all, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"nope"`)
	})
}

func TestSkip(t *testing.T) {
	err := Skip("no %s directory", "images")
	reason, ok := IsSkip(err)
	require.True(t, ok)
	assert.Equal(t, "no images directory", reason)
	assert.Equal(t, "skipped: no images directory", err.Error())

	_, ok = IsSkip(errors.New("boom"))
	assert.False(t, ok)
	_, ok = IsSkip(nil)
	assert.False(t, ok)
}

func TestFailure(t *testing.T) {
	var f Failure
	assert.NoError(t, f.Err())

	f.Addf("first %d", 1)
	f.AddFile("/tmp/a", "second")
	f.AddErr("", errors.New("third"))
	f.AddErr("/tmp/b", errors.New("fourth"))

	err := f.Err()
	require.Error(t, err)
	assert.Equal(t, "first 1\nsecond\nthird\nfourth", err.Error())
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, FailedFiles(err))
	assert.Nil(t, FailedFiles(errors.New("plain")))
}
