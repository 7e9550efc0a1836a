package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards output until Init is called.
var Log = newDiscard()

type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
	// Console also mirrors entries to stderr. Off while the TUI owns the terminal.
	Console bool
}

// Init points Log at a rotating log file.
func Init(cfg Config) error {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Log.SetLevel(ParseLevel(cfg.Level))

	var writers []io.Writer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     28, // days
			Compress:   cfg.Compress,
		})
	}
	if cfg.Console {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		Log.SetOutput(io.Discard)
		return nil
	}
	Log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// ParseLevel maps a config level to logrus, defaulting to info.
func ParseLevel(raw string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// For returns an entry tagged with a component name.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
