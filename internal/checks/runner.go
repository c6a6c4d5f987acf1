package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/docscheck/internal/models"
)

// LiveDisabledReason is the skip message for live checks outside live mode.
const LiveDisabledReason = "live checks disabled (set TEST_DOCS=1 or pass --live)"

// Options controls a run.
type Options struct {
	// Live runs checks that need a real build.
	Live bool
}

// Run executes checks sequentially, in the order given, and returns the
// report. Live checks are skipped unless opts.Live is set. Nothing is
// retried; a cancelled context fails the remaining checks.
func Run(ctx context.Context, env *Env, checks []Check, opts Options) *models.Report {
	report := &models.Report{
		RunID:       uuid.New().String(),
		ProjectRoot: env.Registry.RootPath(),
		StartedAt:   time.Now(),
		Live:        opts.Live,
		Results:     make([]models.CheckResult, 0, len(checks)),
	}

	for i, c := range checks {
		if i == 0 || checks[i-1].Category != c.Category {
			env.Logger.LogCategoryStart(c.Category, countRun(checks[i:], c.Category))
		}

		result := RunOne(ctx, env, c, opts)
		if err := env.Logger.LogCheckResult(result); err != nil {
			env.Logger.LogDebug(fmt.Sprintf("failed to log result of %s: %v", c.ID, err))
		}
		report.Results = append(report.Results, result)
	}

	report.Duration = time.Since(report.StartedAt)
	env.Logger.LogSummary(*report)
	return report
}

// RunOne executes a single check and converts its outcome to a result.
func RunOne(ctx context.Context, env *Env, c Check, opts Options) models.CheckResult {
	result := models.CheckResult{
		ID:          c.ID,
		Category:    c.Category,
		Description: c.Description,
		Live:        c.Live,
	}

	if c.Live && !opts.Live {
		result.Status = models.StatusSkip
		result.Message = LiveDisabledReason
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Status = models.StatusFail
		result.Message = fmt.Sprintf("run interrupted: %v", err)
		return result
	}

	start := time.Now()
	err := c.Run(ctx, env)
	result.Duration = time.Since(start)

	if reason, ok := IsSkip(err); ok {
		result.Status = models.StatusSkip
		result.Message = reason
		return result
	}
	if err != nil {
		result.Status = models.StatusFail
		result.Message = err.Error()
		result.Files = FailedFiles(err)
		return result
	}
	result.Status = models.StatusPass
	return result
}

// countRun counts the leading checks of one category.
func countRun(checks []Check, category string) int {
	n := 0
	for _, c := range checks {
		if c.Category != category {
			break
		}
		n++
	}
	return n
}
