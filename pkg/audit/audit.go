// Package audit records security-relevant decisions to a dedicated zap sink,
// separate from the request log.
package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zl *zap.Logger
}

// New builds a JSON audit logger. An empty path writes to stdout.
func New(path string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	zl, err := cfg.Build(zap.Fields(zap.String("log", "audit")))
	if err != nil {
		return nil, err
	}
	return &Logger{zl: zl}, nil
}

// NewWithCore is used by tests to capture entries.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zl: zap.New(core)}
}

func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Denied records an authorization refusal, including refusals that are
// reported to the caller as not found.
func (l *Logger) Denied(ctx context.Context, actor uuid.UUID, resource string, id uuid.UUID, reason string) {
	l.zl.Warn("access denied",
		zap.String("actor", actor.String()),
		zap.String("resource", resource),
		zap.String("resource_id", id.String()),
		zap.String("reason", reason),
		zap.String("request_id", requestID(ctx)),
	)
}

// Action records a state change performed by actor.
func (l *Logger) Action(ctx context.Context, actor uuid.UUID, action, resource string, id uuid.UUID, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("actor", actor.String()),
		zap.String("action", action),
		zap.String("resource", resource),
		zap.String("resource_id", id.String()),
		zap.String("request_id", requestID(ctx)),
	}
	l.zl.Info("action", append(base, fields...)...)
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

type ctxKey struct{}

// WithRequestID stores the request id for later audit entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
