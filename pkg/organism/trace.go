package organism

import (
	"context"

	"github.com/aretw0/cells/pkg/domain"
)

type traceKey struct{}

// WithTraceID returns a context whose records carry id as action id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the action id carried by ctx, or "" outside any trace.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

func actionID(ctx context.Context) string {
	if id := TraceID(ctx); id != "" {
		return id
	}
	return domain.SystemAction
}
