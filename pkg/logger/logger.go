// Package logger provides the one sanctioned package-level singleton in
// this codebase: a structured logger every other package calls into
// directly rather than threading through constructors.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// ParseLevel maps a config string to a slog.Level, defaulting to Info for
// anything unrecognized so a typo in configuration never prevents startup.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init replaces the package logger with one filtering at the given level.
func Init(level slog.Level) {
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func Debug(msg string, args ...any) { log.Debug(msg, args...) }
func Info(msg string, args ...any)  { log.Info(msg, args...) }
func Warn(msg string, args ...any)  { log.Warn(msg, args...) }
func Error(msg string, args ...any) { log.Error(msg, args...) }

// With returns a logger scoped with the given key/value attributes, for
// call sites that want consistent fields (e.g. a request id) across
// several log lines without repeating them each time.
func With(args ...any) *slog.Logger {
	return log.With(args...)
}
