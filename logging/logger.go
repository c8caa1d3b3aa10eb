// Package logging configures the structured logger shared by every lemurdb component.
//
// Components never construct their own handlers. They ask for a child logger carrying their context:
//
//	log := logging.WithComponent("disk_writer")
//	log.Debug("block flushed", "records", n)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json, text
	AddSource bool
	Output    io.Writer
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init installs the global logger. It may be called more than once; the latest configuration wins.
func Init(cfg Config) {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	mu.Lock()
	logger = slog.New(handler)
	mu.Unlock()
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
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

// GetLogger returns the global logger, installing a text logger at warn level if Init was never called. The
// engine is embedded, so it stays quiet unless the host asks otherwise.
func GetLogger() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Level: "warn", Format: "text"})
	return GetLogger()
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithRelation creates a logger with relation context.
// Use this for catalog and relation file operations.
func WithRelation(name string, oid uint32) *slog.Logger {
	return GetLogger().With("relation", name, "oid", oid)
}
