package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init installs the default JSON logger on stdout. When file is set, the
// same records are also written to a size-rotated log file; the returned
// closer releases it.
func Init(level, file string) io.Closer {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if file == "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
		return io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
	}
	handler := slogmulti.Fanout(
		slog.NewJSONHandler(os.Stdout, opts),
		slog.NewJSONHandler(rotator, opts),
	)
	slog.SetDefault(slog.New(handler))
	return rotator
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
