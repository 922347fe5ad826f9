package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.SugaredLogger
	once   sync.Once
)

// Init builds the process logger. format is "json" or "console";
// level is one of debug/info/warn/error.
func Init(level, format string) *zap.SugaredLogger {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		var encoder zapcore.Encoder
		if format == "console" {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(encoderCfg)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderCfg)
		}

		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), parseLevel(level))
		global = zap.New(core, zap.AddCaller()).Sugar()
	})
	return global
}

// L returns the process logger, initializing a default one if Init was
// never called (tests).
func L() *zap.SugaredLogger {
	if global == nil {
		return Init("info", "console")
	}
	return global
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
