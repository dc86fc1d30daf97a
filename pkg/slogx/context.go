package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Attribute keys shared by every log line that concerns a session.
const (
	KeyLogin       = "login"
	KeyFingerprint = "fingerprint"
)

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithSession tags the context logger with the account and device a
// request acts for. An empty fingerprint is left out.
func WithSession(ctx context.Context, login, fingerprint string) context.Context {
	attrs := []any{slog.String(KeyLogin, login)}
	if fingerprint != "" {
		attrs = append(attrs, slog.String(KeyFingerprint, fingerprint))
	}
	return With(ctx, attrs...)
}
