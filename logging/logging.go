package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how structured logs are written.
type Options struct {
	// FilePath is the rotating log file. Empty disables file logging and
	// sends records to stderr instead.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      slog.Level
}

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init builds the process-wide structured logger. Safe to call more than
// once; the first call wins.
func Init(opts Options) *slog.Logger {
	once.Do(func() {
		defaultLogger = newLogger(opts)
	})
	return defaultLogger
}

// Default returns the process logger, initializing a stderr logger if Init
// was never called.
func Default() *slog.Logger {
	if defaultLogger == nil {
		return Init(Options{Level: slog.LevelInfo})
	}
	return defaultLogger
}

func newLogger(opts Options) *slog.Logger {
	var sink io.Writer = os.Stderr
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err == nil {
			sink = &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    orDefault(opts.MaxSizeMB, 10),
				MaxBackups: orDefault(opts.MaxBackups, 3),
				MaxAge:     orDefault(opts.MaxAgeDays, 14),
				Compress:   true,
			}
		}
	}
	handler := slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler)
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(name string) *slog.Logger {
	return Default().With("component", name)
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}
