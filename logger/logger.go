// ABOUTME: This file provides the slog-based JSON logger shared by every component
// ABOUTME: Output format stays stable so log shippers can parse it without per-service rules
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON logger preconfigured with the service name.
// Level names are lowercased and the standard keys are kept as
// time/level/msg so the output matches the rest of the fleet.
func New(serviceName string) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: levelFromEnv(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if level, ok := a.Value.Any().(slog.Level); ok {
					return slog.Attr{Key: "level", Value: slog.StringValue(strings.ToLower(level.String()))}
				}
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(os.Stdout, options)

	return slog.New(handler).With("service", serviceName)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
