package pixelmap

import (
	"log/slog"

	"github.com/gogpu/pixelmap/internal/logging"
)

// SetLogger configures the logger for pixelmap and all its sub-packages.
// By default, pixelmap produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by pixelmap:
//   - [slog.LevelDebug]: storage allocation and release, resample sizes
//   - [slog.LevelWarn]: non-fatal issues (unknown allocator at release, close errors)
//
// Example:
//
//	pixelmap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by pixelmap.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
