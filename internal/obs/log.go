// Package obs wires the connector's ambient observability stack: structured
// logging, tracing, and request correlation. None of it is reachable from
// internal/translate, which stays a pure function of catalog and request;
// only internal/server imports this package.
package obs

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the connector's root logger: JSON in production (so log
// aggregators can parse it), colored console otherwise.
func NewLogger(production bool) *zap.SugaredLogger {
	return NewLoggerWithOutput(production, os.Stdout).Sugar()
}

func NewLoggerWithOutput(production bool, output zapcore.WriteSyncer) *zap.Logger {
	econf := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		TimeKey:        "time",
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
	}

	var core zapcore.Core
	if production {
		econf.EncodeLevel = zapcore.LowercaseLevelEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(econf), output, zap.InfoLevel)
	} else {
		econf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(econf), output, zap.DebugLevel)
	}
	return zap.New(core)
}
