package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel, when set to a zap level name ("debug", "info", ...), adjusts
// the harness loggers at init time. Handy when chasing a node that refuses to
// come up: LIGHTNINGD_LOG=debug go test ./...
const EnvLogLevel = "LIGHTNINGD_LOG"

var (
	logger  *zap.Logger
	sugared *zap.SugaredLogger
	level   = zap.NewAtomicLevelAt(zapcore.WarnLevel)
)

func init() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			level.SetLevel(l)
		}
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level

	var err error
	logger, err = cfg.Build()
	if err != nil {
		panic(err)
	}
	sugared = logger.Sugar()
}

// SetLevel adjusts the level of the loggers.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// L returns the global raw logger.
func L() *zap.Logger {
	return logger
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return sugared
}
