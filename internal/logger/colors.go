package logger

import (
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/docscheck/internal/models"
)

// levelColor returns the color for a log level label.
func levelColor(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// statusColor returns the color for a check status.
func statusColor(s models.Status) *color.Color {
	switch s {
	case models.StatusPass:
		return color.New(color.FgGreen)
	case models.StatusFail:
		return color.New(color.FgRed, color.Bold)
	case models.StatusSkip:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}
