package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
)

// Preinit installs a debug console logger used until the config is loaded.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init installs the process logger. Outside development, records are also
// written to stdout as JSON for log collectors.
func Init(level, env string) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, os.Stdout, ParseLevel(level), env)))
}

func newHandler(consoleOut, structured io.Writer, level slog.Level, env string) slog.Handler {
	handlers := []slog.Handler{
		console.NewHandler(consoleOut, &console.HandlerOptions{
			AddSource: level == slog.LevelDebug,
			Level:     level,
		}),
	}

	if env != "development" {
		handlers = append(handlers, slog.NewJSONHandler(structured, &slog.HandlerOptions{Level: level}))
	}

	return slogmulti.Fanout(handlers...)
}

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
