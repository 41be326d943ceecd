package requestctx

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerContextKey  contextKey = "github.com/maplemarket/api/internal/platform/requestctx/logger"
	accountContextKey contextKey = "github.com/maplemarket/api/internal/platform/requestctx/account"
)

var noopLogger = zap.NewNop()

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance used across the package.
func NoopLogger() *zap.Logger { return noopLogger }

// WithAccountEmail stores the authenticated account email on the context.
func WithAccountEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ctx
	}
	return context.WithValue(ctx, accountContextKey, email)
}

// AccountEmail retrieves the authenticated account email from context.
func AccountEmail(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	email, ok := ctx.Value(accountContextKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
