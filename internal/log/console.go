package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleLogger is a leveled, standard output logging engine backed by zap.
type ConsoleLogger struct {
	level  Level
	logger *zap.SugaredLogger
}

// NewConsoleLogger creates a logger limited to the specified level. Only log messages that are
// at least as severe as the specified level are written.
func NewConsoleLogger(level Level) Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level.zapLevel(),
	)

	return NewZapLogger(core, level)
}

// NewZapLogger creates a logger that writes to an arbitrary zap core, filtered to the specified
// level in addition to whatever filtering the core itself performs.
func NewZapLogger(core zapcore.Core, level Level) Logger {
	return &ConsoleLogger{
		level:  level,
		logger: zap.New(core).Sugar(),
	}
}

// Debug logs a debug message, if permitted by the current level.
func (l *ConsoleLogger) Debug(format string, v ...interface{}) {
	if l.level.Enables(Debug) {
		l.logger.Debugf(format, v...)
	}
}

// Info logs an informational message, if permitted by the current level.
func (l *ConsoleLogger) Info(format string, v ...interface{}) {
	if l.level.Enables(Info) {
		l.logger.Infof(format, v...)
	}
}

// Warn logs a warning message, if permitted by the current level.
func (l *ConsoleLogger) Warn(format string, v ...interface{}) {
	if l.level.Enables(Warn) {
		l.logger.Warnf(format, v...)
	}
}

// Error logs an error message, if permitted by the current level.
func (l *ConsoleLogger) Error(format string, v ...interface{}) {
	if l.level.Enables(Error) {
		l.logger.Errorf(format, v...)
	}
}

// Level reads the current logging level.
func (l *ConsoleLogger) Level() Level {
	return l.level
}

// Sync flushes any buffered log entries.
func (l *ConsoleLogger) Sync() error {
	return l.logger.Sync()
}
