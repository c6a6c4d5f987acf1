// Package docstest runs documentation checks as go test subtests, so a
// project can gate its docs in CI with:
//
//	func TestDocs(t *testing.T) {
//		reg, cfg, err := registry.Load(".")
//		...
//		env := checks.NewEnv(reg, builder.NewSphinxBuilder(reg, cfg.Builder, nil), nil)
//		docstest.Run(t, env, checks.All(), docstest.LiveEnabled())
//	}
package docstest

import (
	"context"
	"testing"

	"github.com/harrison/docscheck/internal/checks"
	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/models"
)

// LiveEnabled reports whether TEST_DOCS enables live checks.
func LiveEnabled() bool {
	return config.LiveFromEnv()
}

// Run executes each check as a subtest named by its ID. A failing check
// fails its subtest with the check message; a skipped one is skipped with
// its reason. The results are returned in run order.
func Run(t *testing.T, env *checks.Env, all []checks.Check, live bool) []models.CheckResult {
	t.Helper()

	ctx := context.Background()
	if deadline, ok := t.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	opts := checks.Options{Live: live}
	results := make([]models.CheckResult, 0, len(all))
	for _, c := range all {
		c := c
		var result models.CheckResult
		t.Run(c.ID, func(t *testing.T) {
			result = checks.RunOne(ctx, env, c, opts)
			switch result.Status {
			case models.StatusFail:
				t.Error(result.Message)
			case models.StatusSkip:
				t.Skip(result.Message)
			}
		})
		results = append(results, result)
	}
	return results
}
