package logging

import "context"

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying extra key/value pairs. Both
// adapters add them to every record logged with that context, which is how
// request-scoped fields such as a request id reach log lines written deep in
// a handler.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := contextArgs(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(fieldsKey{}).([]any)
	return args
}

// withContextArgs prepends fields carried by ctx to args.
func withContextArgs(ctx context.Context, args []any) []any {
	extra := contextArgs(ctx)
	if len(extra) == 0 {
		return args
	}
	out := make([]any, 0, len(extra)+len(args))
	out = append(out, extra...)
	return append(out, args...)
}
