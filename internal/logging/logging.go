// Package logging builds the slog loggers chewingd components share.
//
// An input method sees every key the user types, so attributes that can
// carry typed text (see TypedTextKeys) are replaced with "[REDACTED]"
// unless Config.LogText is set. File output goes through FileRotator.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Level is a slog level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the slog handler.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config holds the logging configuration.
type Config struct {
	Level  Level
	Format Format

	// Output is one of "stdout", "stderr", "file", "both" (stderr and
	// file) or "discard".
	Output string

	// FilePath is the log file used by the "file" and "both" outputs.
	FilePath string
	// MaxSize is the size in megabytes at which the file is rotated.
	MaxSize    int64
	MaxAge     int // days
	MaxBackups int
	Compress   bool

	AddSource bool

	// LogText keeps typed text in log attributes.
	LogText bool

	// Component is attached to every record when set.
	Component string

	// Writer replaces Output when set.
	Writer io.Writer
}

// DefaultConfig logs text at info level to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     "stderr",
		FilePath:   DefaultLogPath(),
		MaxSize:    10,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
		Component:  "chewingd",
	}
}

// DefaultLogPath returns $XDG_STATE_HOME/chewingd/chewingd.log, or
// ~/Library/Logs/chewingd/chewingd.log on macOS.
func DefaultLogPath() string {
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "chewingd", "chewingd.log")
	}
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "chewingd", "chewingd.log")
}

// TypedTextKeys are the attribute keys redacted unless Config.LogText is set.
var TypedTextKeys = []string{"event", "phrase", "phones", "commit", "preedit", "buffer", "text"}

const redacted = "[REDACTED]"

// Logger is a slog.Logger that owns its log file, if any.
type Logger struct {
	*slog.Logger
	rotator *FileRotator
}

// New builds a logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	w, rotator, err := openOutput(cfg)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	if !cfg.LogText {
		opts.ReplaceAttr = redactTypedText
	}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	if cfg.Component != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("component", cfg.Component)})
	}
	return &Logger{Logger: slog.New(h), rotator: rotator}, nil
}

func openOutput(cfg *Config) (io.Writer, *FileRotator, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil, nil
	}
	output := strings.ToLower(cfg.Output)
	switch output {
	case "stdout":
		return os.Stdout, nil, nil
	case "discard":
		return io.Discard, nil, nil
	case "file", "both":
		r, err := NewFileRotator(cfg)
		if err != nil {
			return nil, nil, err
		}
		if output == "both" {
			return io.MultiWriter(os.Stderr, r), r, nil
		}
		return r, r, nil
	default:
		return os.Stderr, nil, nil
	}
}

func redactTypedText(_ []string, a slog.Attr) slog.Attr {
	if slices.Contains(TypedTextKeys, strings.ToLower(a.Key)) {
		a.Value = slog.StringValue(redacted)
	}
	return a
}

// SetDefault installs l as the slog default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// WithComponent returns a logger whose records carry component=name. It
// shares the parent's log file; close only the parent.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.With(slog.String("component", name))}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// Sync flushes the log file, if any.
func (l *Logger) Sync() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Sync()
}

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	if l, ok := levelNames[strings.ToLower(s)]; ok {
		return l, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// LevelString is the inverse of ParseLevel.
func LevelString(level Level) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseFormat parses "text" or "json". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %q", s)
}
