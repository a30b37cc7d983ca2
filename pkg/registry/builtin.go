package registry

import (
	"context"
	"fmt"

	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/organism"
)

// Builtin returns a registry holding the stock reactors:
//
//	noop            does nothing
//	echo            resolves with its input
//	sum             resolves with the sum of its numeric arguments
//	assign:<state>  writes its first argument to a state attribute; a routed
//	                state change writes its new value
//	forward:<event> fires an event of the host with its arguments
//	emit:<event>    fires an event of the organism itself
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("noop", organism.Sink(func(context.Context, *organism.Flora, ...any) error { return nil }))
	r.Register("echo", echo)
	r.Register("sum", sum)
	r.RegisterFactory("assign", assign)
	r.RegisterFactory("forward", forward)
	r.RegisterFactory("emit", emit)
	return r
}

func echo(_ context.Context, _ *organism.Flora, args ...any) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return args, nil
}

func sum(_ context.Context, _ *organism.Flora, args ...any) (any, error) {
	var (
		ints    int
		float   float64
		isFloat bool
	)
	for i, a := range args {
		switch v := a.(type) {
		case int:
			ints += v
		case float64:
			float += v
			isFloat = true
		case nil:
		default:
			return nil, fmt.Errorf("argument %d: expected number, got %T", i, a)
		}
	}
	if isFloat {
		return float + float64(ints), nil
	}
	return ints, nil
}

func assign(state string) organism.Reactor {
	return organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		if change, ok := v.(domain.Signal); ok {
			v = change.Next
		}
		return f.Nuclei.Set(ctx, state, v)
	})
}

func forward(event string) organism.Reactor {
	return organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
		if f.Host == nil {
			return nil
		}
		return f.Host.Emit(ctx, event, args...)
	})
}

func emit(event string) organism.Reactor {
	return organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
		return f.Nuclei.Emit(ctx, event, args...)
	})
}
