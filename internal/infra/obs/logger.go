package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions controls where and how much the service logs.
type LoggerOptions struct {
	Env   string
	Level string
	// File, when set, receives a rotated JSON copy of every record.
	File string
}

// NewLogger configures slog with colorful dev output and JSON for production-like envs.
func NewLogger(opts LoggerOptions) *slog.Logger {
	level := parseLevel(opts.Level)
	var handler slog.Handler
	if opts.Env == "dev" || opts.Env == "local" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: true})
	}
	if opts.File != "" {
		handler = fanout{handler, slog.NewJSONHandler(rotatingFile(opts.File), &slog.HandlerOptions{Level: level})}
	}
	return slog.New(handler)
}

func rotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
