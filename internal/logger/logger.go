package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON slog.Logger writing to stdout. The level defaults to info
// and can be overridden through the LOG_LEVEL environment variable.
func New() *slog.Logger {
	level := slog.LevelInfo
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(v)); err == nil {
			level = parsed
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
