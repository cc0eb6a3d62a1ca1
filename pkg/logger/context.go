package logger

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	fieldsKey ctxKey = "fields"
)

// With returns a context whose logger carries fields.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey, From(ctx).With(fields...))
}

// From returns the logger stored in ctx, or the process logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// fieldSet collects attributes that handlers deeper in the chain resolve,
// such as the tenant, so the outermost request log line can carry them.
type fieldSet struct {
	mu     sync.Mutex
	fields []any
}

// WithFieldSet starts an empty field set for one request.
func WithFieldSet(ctx context.Context) context.Context {
	return context.WithValue(ctx, fieldsKey, &fieldSet{})
}

// Annotate records fields in the request's field set, when one was
// started, and adds them to the logger in ctx.
func Annotate(ctx context.Context, fields ...any) context.Context {
	if fs, ok := ctx.Value(fieldsKey).(*fieldSet); ok {
		fs.mu.Lock()
		fs.fields = append(fs.fields, fields...)
		fs.mu.Unlock()
	}
	return With(ctx, fields...)
}

// Fields returns a copy of everything annotated on ctx's field set.
func Fields(ctx context.Context) []any {
	fs, ok := ctx.Value(fieldsKey).(*fieldSet)
	if !ok {
		return nil
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]any, len(fs.fields))
	copy(out, fs.fields)
	return out
}
