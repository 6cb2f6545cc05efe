package logger

import (
	"log/slog"
	"os"
)

// Log defaults to the standard slog logger so packages can log before
// Init runs (and in tests).
var Log = slog.Default()

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
