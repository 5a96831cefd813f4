//go:generate go run golang.org/x/tools/cmd/stringer -type=Level -linecomment=true

package log

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level parametrizes supported log verbosity levels.
type Level int

const (
	// Debug messages trace marks, measurements, and frame scheduling.
	Debug Level = iota // DEBUG
	// Info messages convey benchmark progress and results.
	Info // INFO
	// Warn messages describe non-erroring divergences, such as a sink that is disabled.
	Warn // WARN
	// Error messages indicate a failed benchmark or a broken instrumentation.
	Error // ERROR
)

// ParseLevel looks up a Level constant by its stringified (case-insensitive) representation. It
// falls back to Error when the level is unknown.
func ParseLevel(level string) (Level, bool) {
	knownLevels := []Level{Debug, Info, Warn, Error}

	for _, knownLevel := range knownLevels {
		if strings.EqualFold(level, knownLevel.String()) {
			return knownLevel, true
		}
	}

	return Error, false
}

// Enables indicates whether the current log level enables logging at another level.
//
// For example,
//	Debug enables Debug, Info, Warn, and Error
//	Info enables Info, Warn, and Error, but not Debug
//	Error enables Error, but not Debug, Info, or Warn
func (l Level) Enables(other Level) bool {
	return l <= other
}

// zapLevel maps the level onto the equivalent zap level.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
