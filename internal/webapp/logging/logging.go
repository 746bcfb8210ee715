package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a text or json logger. Verbose forces the debug level.
func New(format, level string, verbose bool, out io.Writer) *slog.Logger {
	lvl := stringToLogLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler)
}

// Setup is New followed by slog.SetDefault.
func Setup(format, level string, verbose bool, out io.Writer) *slog.Logger {
	logger := New(format, level, verbose, out)
	slog.SetDefault(logger)

	return logger
}

func stringToLogLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
