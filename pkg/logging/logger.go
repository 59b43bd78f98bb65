package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much a Logger writes.
type Options struct {
	// Dir holds the log files. Empty means ~/.dossier/logs.
	Dir string

	// Level is debug, info, warn or error. Empty means info.
	Level string

	// Console writes human-readable lines instead of JSON.
	Console bool
}

// Logger provides structured logging for dossier components.
// All components of one process write to a session-specific file named
// <session-id>-dossier.log.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	zap       *zap.Logger
	sugar     *zap.SugaredLogger
	logPath   string
	closeOnce sync.Once
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once
)

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// LogDirectory resolves the directory for opts and creates it.
func LogDirectory(opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".dossier", "logs")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return dir, nil
}

// NewLogger creates a logger for a specific component.
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
// Callers can check the error to detect fallback mode and log warnings.
func NewLogger(component string, opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return newFallbackLogger(component, zapcore.InfoLevel, err), err
	}

	dir, err := LogDirectory(opts)
	if err != nil {
		return newFallbackLogger(component, level, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(dir, fmt.Sprintf("%s-dossier.log", sessID))

	// Append mode: several components share the file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, level, err), err
	}

	core := zapcore.NewCore(newEncoder(opts.Console), zapcore.AddSync(file), level)
	l := fromZap(zap.New(core).Named(component), component)
	l.file = file
	l.logPath = logPath
	return l, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, level zapcore.Level, err error) *Logger {
	core := zapcore.NewCore(newEncoder(true), zapcore.Lock(os.Stderr), level)
	l := fromZap(zap.New(core).Named(component), component)
	l.sugar.Warnf("Failed to initialize file logging: %v", err)
	l.sugar.Warn("Falling back to stderr logging")
	return l
}

func fromZap(z *zap.Logger, component string) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		zap:       z,
		sugar:     z.Sugar(),
	}
}

func newEncoder(console bool) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if console {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Zap returns the structured logger underneath.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, or "" in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.zap.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}
