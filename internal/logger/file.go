package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/docscheck/internal/models"
)

// FileLogger writes a timestamped run log under logDir and keeps a
// latest.log symlink pointing at it. Failed checks also get a detail file
// in logDir/checks/.
type FileLogger struct {
	logDir    string
	runLog    *os.File
	runFile   string
	checksDir string
	logLevel  string
	mu        sync.Mutex
}

// NewFileLogger creates a FileLogger writing run-YYYYMMDD-HHMMSS.log into
// logDir, creating the directory as needed.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	checksDir := filepath.Join(logDir, "checks")
	if err := os.MkdirAll(checksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:    logDir,
		runLog:    file,
		runFile:   runFile,
		checksDir: checksDir,
		logLevel:  normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== docscheck Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) { fl.logWithLevel("INFO", message) }

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) { fl.logWithLevel("WARN", message) }

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCategoryStart logs the start of a category at INFO level.
func (fl *FileLogger) LogCategoryStart(category string, count int) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Checking %s: %d %s\n", timestamp(), category, count, plural(count, "check", "checks")))
}

// LogCheckResult appends the result to the run log and, for failures,
// writes checks/<id>.log with the full message.
func (fl *FileLogger) LogCheckResult(result models.CheckResult) error {
	if fl.shouldLog("info") {
		line := fmt.Sprintf("[%s] %s %s (%.3fs)", timestamp(), result.Status, result.ID, result.Duration.Seconds())
		if result.Message != "" && result.Status != models.StatusPass {
			line += ": " + firstLine(result.Message)
		}
		fl.writeRunLog(line + "\n")
	}

	if result.Status != models.StatusFail {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Check %s ===\n", result.ID)
	fmt.Fprintf(&b, "Category: %s\n", result.Category)
	fmt.Fprintf(&b, "Description: %s\n", result.Description)
	fmt.Fprintf(&b, "Status: %s\n", result.Status)
	fmt.Fprintf(&b, "Duration: %.3fs\n\n", result.Duration.Seconds())
	fmt.Fprintf(&b, "Message:\n%s\n\n", result.Message)
	fmt.Fprintf(&b, "Logged at: %s\n", time.Now().Format(time.RFC3339))

	path := filepath.Join(fl.checksDir, result.ID+".log")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write check log: %w", err)
	}
	return nil
}

// LogSummary logs the run summary at INFO level.
func (fl *FileLogger) LogSummary(report models.Report) {
	if !fl.shouldLog("info") {
		return
	}

	status := "SUCCESS"
	if report.HasFailures() {
		status = "FAILED"
	}

	ts := timestamp()
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === CHECK SUMMARY ===\n", ts)
	fmt.Fprintf(&b, "[%s] Run ID:       %s\n", ts, report.RunID)
	fmt.Fprintf(&b, "[%s] Total checks: %d\n", ts, report.Total())
	fmt.Fprintf(&b, "[%s] Passed:       %d\n", ts, report.Count(models.StatusPass))
	fmt.Fprintf(&b, "[%s] Failed:       %d\n", ts, report.Count(models.StatusFail))
	fmt.Fprintf(&b, "[%s] Skipped:      %d\n", ts, report.Count(models.StatusSkip))
	fmt.Fprintf(&b, "[%s] Live:         %t\n", ts, report.Live)
	fmt.Fprintf(&b, "[%s] Total time:   %.1fs\n", ts, report.Duration.Seconds())
	fmt.Fprintf(&b, "[%s] Status:       %s\n", ts, status)
	fmt.Fprintf(&b, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))
	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	if err := fl.runLog.Sync(); err != nil {
		return fmt.Errorf("failed to sync run log: %w", err)
	}
	if err := fl.runLog.Close(); err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}
	fl.runLog = nil
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
