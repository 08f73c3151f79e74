// Package logging is the structured logger every layer of the view service
// writes through. Records carry the attributes attached with With and those
// stored in the context with ContextWith.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are alternating keys
// and values:
//
//	log.Info(ctx, "view created", "view_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}

type attrsKey struct{}

// ContextWith returns a copy of ctx carrying args in addition to any it
// already carries. Every record logged with the returned context includes
// them, so a request id set by the transport shows up in service logs.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := contextArgs(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(attrsKey{}).([]any)
	return args
}
