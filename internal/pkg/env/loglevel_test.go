package env

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{raw: "debug", want: slog.LevelDebug},
		{raw: "INFO", want: slog.LevelInfo},
		{raw: "warning", want: slog.LevelWarn},
		{raw: " error ", want: slog.LevelError},
		{raw: "", want: slog.LevelWarn},
		{raw: "verbose", want: slog.LevelWarn},
		{raw: "info+2", want: slog.Level(2)},
		{raw: "DEBUG-4", want: slog.Level(-8)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseLogLevel(tt.raw, slog.LevelWarn); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
