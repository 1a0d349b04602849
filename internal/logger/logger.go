// Package logger writes the pjournal log: a rotating file next to the
// settings file, mirrored to stderr in debug mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/pjournal/internal/constants"
)

const (
	fileName   = constants.AppName + ".log"
	maxSizeMB  = 5
	maxBackups = 5
	maxAgeDays = 90
)

var (
	// Logger is nil until Init runs; the helpers below are no-ops until then.
	Logger *log.Logger

	path string
)

// Config holds logger configuration
type Config struct {
	Debug bool
	// Dir is the directory holding the settings file. Logs go to Dir/logs.
	Dir string
	// Owner is attached to every line when set.
	Owner string
	// Stderr receives the debug mirror. Defaults to os.Stderr.
	Stderr io.Writer
}

// Init opens the log file and replaces the global logger.
func Init(cfg Config) error {
	dir := filepath.Join(cfg.Dir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	path = filepath.Join(dir, fileName)

	var w io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		w = io.MultiWriter(stderr, w)
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		ReportCaller:    cfg.Debug,
		// Callers go through logAt.
		CallerOffset: 1,
	})
	if cfg.Owner != "" {
		l = l.With("owner", cfg.Owner)
	}
	Logger = l
	return nil
}

// Path returns the active log file, or "" before Init.
func Path() string {
	if Logger == nil {
		return ""
	}
	return path
}

// Annotate adds keyvals to every later line, e.g. the storage backend once
// it is known.
func Annotate(keyvals ...interface{}) {
	if Logger != nil {
		Logger = Logger.With(keyvals...)
	}
}

// With returns a child logger carrying keyvals, or nil before Init.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With(keyvals...)
}

func logAt(level log.Level, msg string, keyvals []interface{}) {
	if Logger != nil {
		Logger.Log(level, msg, keyvals...)
	}
}

func Debug(msg string, keyvals ...interface{}) { logAt(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...interface{})  { logAt(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...interface{})  { logAt(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...interface{}) { logAt(log.ErrorLevel, msg, keyvals) }
