package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	atomicLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger       = zap.NewNop().Sugar()
	logFile      *os.File
)

// DefaultPath is used when Setup is called without a file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wikinsight", "wikinsight.log")
}

// Setup configures the logging system with the specified level and optional file path.
// Output is JSON lines so a running TUI never writes to the terminal.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	currentLevel = level

	if level == LevelOff {
		logger = zap.NewNop().Sugar()
		return nil
	}

	logPath := DefaultPath()
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	atomicLevel.SetLevel(level.zapLevel())
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), atomicLevel)

	logFile = f
	logger = zap.New(core).Named("wikinsight").Sugar()
	return nil
}

// SetLevel changes the current logging level. Switching to or from
// LevelOff requires Setup.
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	if level != LevelOff {
		atomicLevel.SetLevel(level.zapLevel())
	}
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close flushes and closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if logFile == nil {
		return nil
	}
	_ = logger.Sync()
	err := logFile.Close()
	logFile = nil
	logger = zap.NewNop().Sugar()
	return err
}

func current() (*zap.SugaredLogger, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, currentLevel != LevelOff
}

func Debugf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Debugf(format, args...)
	}
}

func Infof(format string, args ...any) {
	if l, ok := current(); ok {
		l.Infof(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Warnf(format, args...)
	}
}

func Errorf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Errorf(format, args...)
	}
}

// FieldLogger attaches structured fields to every message.
type FieldLogger struct {
	fields []any
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]any) *FieldLogger {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &FieldLogger{fields: kv}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Debugw(fmt.Sprintf(format, args...), fl.fields...)
	}
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	if l, ok := current(); ok {
		l.Infow(fmt.Sprintf(format, args...), fl.fields...)
	}
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Warnw(fmt.Sprintf(format, args...), fl.fields...)
	}
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	if l, ok := current(); ok {
		l.Errorw(fmt.Sprintf(format, args...), fl.fields...)
	}
}
