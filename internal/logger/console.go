// Package logger provides logging implementations for docscheck runs.
//
// Loggers report category starts, individual check results and the run
// summary. Implementations are thread-safe and filter by level.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/docscheck/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs check progress to a writer with [HH:MM:SS] timestamps.
// Color output is enabled for os.Stdout/os.Stderr when they are terminals.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// A nil writer discards everything. Invalid levels fall back to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a color-capable terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || (f != os.Stdout && f != os.Stderr) {
		return false
	}
	// color.NoColor honors NO_COLOR
	return !color.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// normalizeLogLevel lowercases level, defaulting to "info" when invalid.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message.
func (cl *ConsoleLogger) LogTrace(message string) { cl.logWithLevel("TRACE", message) }

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) { cl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) { cl.logWithLevel("INFO", message) }

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) { cl.logWithLevel("WARN", message) }

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) { cl.logWithLevel("ERROR", message) }

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := level
	if cl.colorOutput {
		label = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), label, message)
}

// LogCategoryStart logs the start of a check category at INFO level.
// Format: "[HH:MM:SS] Checking <category>: <count> checks"
func (cl *ConsoleLogger) LogCategoryStart(category string, count int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	name := category
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(category)
	}
	fmt.Fprintf(cl.writer, "[%s] Checking %s: %d %s\n", timestamp(), name, count, plural(count, "check", "checks"))
}

// LogCheckResult logs one check outcome at INFO level. Failures and skips
// carry their message on the same line.
// Format: "[HH:MM:SS] <STATUS> <id> (<duration>)[: message]"
func (cl *ConsoleLogger) LogCheckResult(result models.CheckResult) error {
	if cl.writer == nil || !cl.shouldLog("info") {
		return nil
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := string(result.Status)
	if cl.colorOutput {
		status = statusColor(result.Status).Sprint(status)
	}

	line := fmt.Sprintf("[%s] %s %s (%s)", timestamp(), status, result.ID, formatDuration(result.Duration))
	if result.Message != "" && result.Status != models.StatusPass {
		line += ": " + result.Message
	}

	_, err := fmt.Fprintln(cl.writer, line)
	return err
}

// LogSummary logs the run summary at INFO level, listing failed checks.
func (cl *ConsoleLogger) LogSummary(report models.Report) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	passed := report.Count(models.StatusPass)
	failed := report.Count(models.StatusFail)
	skipped := report.Count(models.StatusSkip)

	var b strings.Builder
	header := "=== Check Summary ==="
	passedText := fmt.Sprintf("Passed: %d", passed)
	failedText := fmt.Sprintf("Failed: %d", failed)
	skippedText := fmt.Sprintf("Skipped: %d", skipped)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		passedText = statusColor(models.StatusPass).Sprint(passedText)
		if failed > 0 {
			failedText = statusColor(models.StatusFail).Sprint(failedText)
		}
		skippedText = statusColor(models.StatusSkip).Sprint(skippedText)
	}

	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] Total checks: %d\n", ts, report.Total())
	fmt.Fprintf(&b, "[%s] %s\n", ts, passedText)
	fmt.Fprintf(&b, "[%s] %s\n", ts, failedText)
	fmt.Fprintf(&b, "[%s] %s\n", ts, skippedText)
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(report.Duration))
	if !report.Live && skipped > 0 {
		fmt.Fprintf(&b, "[%s] Live checks skipped (set TEST_DOCS or pass --live to run them)\n", ts)
	}

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintf(&b, "[%s] Failed checks:\n", ts)
		for _, f := range failures {
			id := f.ID
			if cl.colorOutput {
				id = statusColor(models.StatusFail).Sprint(id)
			}
			fmt.Fprintf(&b, "[%s]   - %s: %s\n", ts, id, f.Message)
		}
	}

	io.WriteString(cl.writer, b.String())
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatDuration converts a time.Duration to a short human-readable string.
// Examples: "12ms", "5.2s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogDebug(message string) {}
func (n *NoOpLogger) LogInfo(message string) {}
func (n *NoOpLogger) LogWarn(message string) {}
func (n *NoOpLogger) LogCategoryStart(category string, count int) {}
func (n *NoOpLogger) LogCheckResult(result models.CheckResult) error { return nil }
func (n *NoOpLogger) LogSummary(report models.Report) {}
