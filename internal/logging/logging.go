// Package logging provides the process-wide structured logger: JSON slog
// records written to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component names used across the codebase.
const (
	CompShell    = "shell"
	CompRegistry = "registry"
	CompTmux     = "tmux"
	CompCLI      = "cli"
)

// Config holds logging configuration.
type Config struct {
	// Dir is the directory for log files. Empty discards all output.
	Dir string

	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string

	// MaxSizeMB is the max size in MB before rotation (default: 10).
	MaxSizeMB int

	// MaxBackups is rotated files to keep (default: 3).
	MaxBackups int
}

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewJSONHandler(io.Discard, nil))
	rotator *lumberjack.Logger
)

// Init initializes the global logger. Safe to call once at startup.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Dir == "" {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return
	}

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "muxify.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	logger = slog.New(slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level}))
}

// ForComponent returns a logger tagged with the component name.
func ForComponent(name string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With("component", name)
}

// Close flushes and closes the underlying log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
}
