package engine

import "context"

type noBlockKey struct{}

// WithNoBlock marks ctx as running somewhere a blocking wait is unsafe,
// e.g. inside a notifier callback. TimedSend/TimedReceive return
// ErrNotPermitted instead of parking when this is set and the fast path
// would block.
func WithNoBlock(ctx context.Context) context.Context {
	return context.WithValue(ctx, noBlockKey{}, true)
}

func mayNotBlock(ctx context.Context) bool {
	v, _ := ctx.Value(noBlockKey{}).(bool)
	return v
}
