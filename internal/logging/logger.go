// Package logging is the structured logger every component takes. Key-value
// pairs can be attached to a child logger with With or to a request context
// with ContextWith.
package logging

import "context"

// Logger logs msg with alternating key-value args, e.g.
//
//	log.Info(ctx, "Appended", "index", idx, "kind", kind)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child that adds args to every record.
	With(args ...any) Logger
}

type ctxKey struct{}

// ContextWith returns a copy of ctx carrying args in addition to any pairs
// already attached. Loggers add them to every record logged with that ctx.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := FromContext(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// FromContext returns the pairs attached by ContextWith.
func FromContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(ctxKey{}).([]any)
	return args
}
