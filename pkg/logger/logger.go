package logger

import (
	"log"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger logr.Logger
	zapLogger    *zap.Logger
)

// Init builds the process-wide logger. Output always goes to stderr because
// stdout carries the MCP stdio channel.
func Init(level string) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(ParseLevel(level))
		built, _ = devConfig.Build()
	}
	zapLogger = built
	globalLogger = zapr.NewLogger(zapLogger)
}

// ParseLevel maps a --log-level value onto a zap level. Unknown values fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get returns the global logger instance
func Get() logr.Logger {
	if globalLogger.GetSink() == nil {
		Init("info")
	}
	return globalLogger
}

// StdLog adapts the global logger for libraries that only accept a *log.Logger.
func StdLog() *log.Logger {
	Get()
	return zap.NewStdLog(zapLogger)
}

// Sync flushes buffered log entries.
func Sync() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
