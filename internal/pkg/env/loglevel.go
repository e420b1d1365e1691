// Package env turns process settings into typed values for the binaries.
package env

import (
	"log/slog"
	"strings"
)

// ParseLogLevel reads the log-level setting. It accepts the slog names with
// an optional offset ("debug", "INFO+2") and "warning" as an alias for warn.
// Anything else, including an empty value, yields fallback.
func ParseLogLevel(raw string, fallback slog.Level) slog.Level {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if raw == "" || level.UnmarshalText([]byte(raw)) != nil {
		return fallback
	}
	return level
}
