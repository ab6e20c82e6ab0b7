package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeFormat = "2006-01-02 15:04:05.999"

// L 全局日志实例
var L = zap.NewNop()

// AtomicLevel 运行时可调整日志级别
var AtomicLevel = zap.NewAtomicLevel()

// Init builds the global logger. level is a zap level name ("debug", "info", ...),
// encoding is "console" or "json".
func Init(level, encoding string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if encoding == "" {
		encoding = "console"
	}
	config.Encoding = encoding
	config.Level = AtomicLevel
	_ = AtomicLevel.UnmarshalText([]byte(level))
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)
	config.DisableStacktrace = true
	config.Sampling = nil
	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	L = l
	return l, nil
}

func SetLevel(level string) {
	L.Info("logger level updated", zap.String("level", level))
	_ = AtomicLevel.UnmarshalText([]byte(level))
}

type ctxKey struct{}

// WithContext stores a request-scoped logger.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L
}
