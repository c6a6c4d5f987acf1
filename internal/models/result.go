package models

import (
	"sort"
	"time"
)

// Status is the outcome of a single check.
type Status string

// Check status constants
const (
	StatusPass Status = "PASS" // All assertions held
	StatusFail Status = "FAIL" // An assertion failed
	StatusSkip Status = "SKIP" // Not applicable or live mode disabled
)

// CheckResult represents the result of running a single check
type CheckResult struct {
	ID          string        `json:"id"`          // Check ID, e.g. "static.files"
	Category    string        `json:"category"`    // Check category, e.g. "static"
	Description string        `json:"description"` // One-line description
	Live        bool          `json:"live"`        // Needs a real build
	Status      Status        `json:"status"`      // PASS, FAIL or SKIP
	Message     string        `json:"message,omitempty"`
	Files       []string      `json:"files,omitempty"` // Files a failure is attributed to
	Duration    time.Duration `json:"duration_ns"`
}

// Report represents the aggregate result of one check run
type Report struct {
	RunID       string        `json:"run_id"`
	ProjectRoot string        `json:"project_root"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Live        bool          `json:"live"`
	Results     []CheckResult `json:"results"`
}

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Total returns the number of checks in the run.
func (r *Report) Total() int {
	return len(r.Results)
}

// HasFailures reports whether any check failed.
func (r *Report) HasFailures() bool {
	return r.Count(StatusFail) > 0
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []CheckResult {
	var failed []CheckResult
	for _, res := range r.Results {
		if res.Status == StatusFail {
			failed = append(failed, res)
		}
	}
	return failed
}

// Categories returns the distinct categories in the run, sorted.
func (r *Report) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, res := range r.Results {
		if !seen[res.Category] {
			seen[res.Category] = true
			cats = append(cats, res.Category)
		}
	}
	sort.Strings(cats)
	return cats
}
