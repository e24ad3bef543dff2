package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It is nil until Init is called, in
// which case all helpers are no-ops except Debugf/Debugln.
var Logger *log.Logger

// Config holds logger configuration
type Config struct {
	Debug bool
	// Dir is the directory the rotating log file lives in.
	Dir string
	// Output overrides the file writer. Used by tests.
	Output io.Writer
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	writer := cfg.Output
	if writer == nil {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "wt.log"),
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = fileWriter
		if cfg.Debug {
			writer = io.MultiWriter(os.Stderr, fileWriter)
		}
	}

	level := log.InfoLevel
	if cfg.Debug || DebugEnabled() {
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "wt",
	})
	return nil
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
