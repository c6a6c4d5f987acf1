// Package checks implements the documentation checks.
//
// Every check is a flat sequence of assertions over the registry, the docs
// source tree and, for live checks, the built site. A check returns nil to
// pass, Skip(...) when it does not apply, or an error naming the missing
// resource, value or file.
package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Check categories, in run order.
const (
	CategoryBuild         = "build"
	CategoryConfiguration = "configuration"
	CategoryStatic        = "static"
	CategoryContent       = "content"
	CategoryAPI           = "api"
	CategorySearch        = "search"
	CategoryI18N          = "i18n"
)

// Func is the body of a check.
type Func func(ctx context.Context, env *Env) error

// Check is one named assertion group.
type Check struct {
	ID          string
	Category    string
	Description string
	// Live checks need a real build or network access and only run in live mode.
	Live bool
	Run  Func
}

// SkipError marks a check as not applicable.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skip returns an error that makes the runner report SKIP with the reason.
func Skip(format string, args ...interface{}) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err is a skip and returns its reason.
func IsSkip(err error) (string, bool) {
	var skip *SkipError
	if errors.As(err, &skip) {
		return skip.Reason, true
	}
	return "", false
}

// Failure collects every problem a check found, so one run reports all
// missing files instead of the first.
type Failure struct {
	Problems []string
	// Files are the paths at fault, for display
	Files []string
}

func (f *Failure) Error() string {
	return strings.Join(f.Problems, "\n")
}

// Addf records a problem.
func (f *Failure) Addf(format string, args ...interface{}) {
	f.Problems = append(f.Problems, fmt.Sprintf(format, args...))
}

// AddFile records a problem with the file it concerns.
func (f *Failure) AddFile(path string, format string, args ...interface{}) {
	f.Addf(format, args...)
	f.Files = append(f.Files, path)
}

// AddErr records err as a problem, attributing it to path when non-empty.
func (f *Failure) AddErr(path string, err error) {
	if path == "" {
		f.Addf("%v", err)
		return
	}
	f.AddFile(path, "%v", err)
}

// Err returns nil when no problem was recorded.
func (f *Failure) Err() error {
	if len(f.Problems) == 0 {
		return nil
	}
	return f
}

// FailedFiles returns the files attributed to err when it is a *Failure.
func FailedFiles(err error) []string {
	var f *Failure
	if errors.As(err, &f) {
		return append([]string(nil), f.Files...)
	}
	return nil
}

// All returns every check in run order.
func All() []Check {
	var all []Check
	all = append(all, buildChecks()...)
	all = append(all, configurationChecks()...)
	all = append(all, staticChecks()...)
	all = append(all, contentChecks()...)
	all = append(all, apiChecks()...)
	all = append(all, searchChecks()...)
	all = append(all, i18nChecks()...)
	return all
}

// Categories returns the category names in run order.
func Categories() []string {
	return []string{
		CategoryBuild,
		CategoryConfiguration,
		CategoryStatic,
		CategoryContent,
		CategoryAPI,
		CategorySearch,
		CategoryI18N,
	}
}

// Select filters all by category names or check IDs, keeping run order.
// No selectors selects everything. Unknown selectors are an error.
func Select(all []Check, selectors ...string) ([]Check, error) {
	if len(selectors) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(selectors))
	for _, s := range selectors {
		s = strings.TrimSpace(s)
		matched := false
		for _, c := range all {
			if c.ID == s || c.Category == s {
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown check or category %q", s)
		}
		wanted[s] = true
	}

	var selected []Check
	for _, c := range all {
		if wanted[c.ID] || wanted[c.Category] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// Find returns the check with id.
func Find(all []Check, id string) (Check, bool) {
	for _, c := range all {
		if c.ID == id {
			return c, true
		}
	}
	return Check{}, false
}
