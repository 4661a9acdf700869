package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger described by lc. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, lc LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
