// Package logger monta o zap.Logger da aplicação e carrega campos por requisição no context.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// New devolve JSON em produção e console colorido no resto.
func New(env string) *zap.Logger {
	if env == "production" {
		l, err := zap.NewProduction(zap.AddStacktrace(zapcore.ErrorLevel))
		if err != nil {
			return zap.NewNop()
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// WithFields anexa campos ao context; Ctx os recupera em qualquer camada.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]zap.Field)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// Ctx devolve base enriquecido com os campos do context (request_id, rota...).
func Ctx(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if ctx == nil {
		return base
	}
	fields, _ := ctx.Value(ctxKey{}).([]zap.Field)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
