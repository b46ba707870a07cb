package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	L     *zap.Logger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = level
	var err error
	L, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
}

// SetLevel changes the level of the global logger. Unknown levels are ignored.
func SetLevel(lvl string) {
	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return
	}
	level.SetLevel(parsed)
}

// WithComponent returns a child logger tagged with a component field
// (handler, service, worker, mq, cache, whatsapp, mailer).
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}
