package organism

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
)

// binding is the runtime behavior of one attribute. Only the functions
// matching the attribute kind are set. Inputs reaching a binding are trusted:
// validation happens at the membrane.
type binding struct {
	name  string
	amino dna.Amino

	get  func() any
	set  func(ctx context.Context, next any) error
	fire func(ctx context.Context, input any, args []any) error
	// ask checks inhibitors and emits compute:start. The returned function
	// runs the reactor and completes the query.
	ask func(ctx context.Context, input any, args []any) (func() (any, error), error)
}

func (o *Organism) buildBindings() map[string]*binding {
	table := make(map[string]*binding, len(o.genome.Nuclei))
	for name, a := range o.genome.Nuclei {
		if !a.Kind.Transportable() {
			continue
		}
		b := &binding{name: name, amino: a}
		switch a.Kind {
		case dna.KindConfig:
			b.get = o.reader(name)
		case dna.KindState:
			b.get = o.reader(name)
			b.set = o.stateWriter(name)
		case dna.KindEvent:
			b.fire = o.trigger(name)
		case dna.KindQuery:
			b.ask = o.invoker(name)
		}
		table[name] = b
	}
	return table
}

func (o *Organism) reader(name string) func() any {
	return func() any {
		v, _ := o.cistern.Get(name)
		return v
	}
}

func (o *Organism) stateWriter(name string) func(context.Context, any) error {
	return func(ctx context.Context, next any) error {
		prev, _ := o.cistern.Get(name)
		if same(prev, next) {
			return nil
		}
		sig := domain.Signal{Prev: prev, Next: next}
		veto, err := o.inhibited(name, sig)
		if err != nil || veto {
			return err
		}
		o.emit(ctx, domain.Record{Type: domain.RecordUpdate, Attribute: name, Value: next, Prev: prev, Next: next})
		o.cistern.SetState(name, next)
		if r := o.nexus[name]; r != nil {
			if _, err := r(ctx, o.reactorFlora(), next); err != nil {
				return err
			}
		}
		// Listeners of a state receive the whole change.
		if err := o.route(ctx, name, sig, []any{sig}); err != nil {
			return err
		}
		return o.notify(name, sig)
	}
}

func (o *Organism) trigger(name string) func(context.Context, any, []any) error {
	return func(ctx context.Context, input any, args []any) error {
		sig := domain.Signal{Value: input}
		veto, err := o.inhibited(name, sig)
		if err != nil || veto {
			return err
		}
		o.emit(ctx, domain.Record{Type: domain.RecordEvent, Attribute: name, Value: input})
		if r := o.nexus[name]; r != nil {
			if _, err := r(ctx, o.reactorFlora(), args...); err != nil {
				return err
			}
		}
		if err := o.route(ctx, name, input, args); err != nil {
			return err
		}
		return o.notify(name, sig)
	}
}

func (o *Organism) invoker(name string) func(context.Context, any, []any) (func() (any, error), error) {
	return func(ctx context.Context, input any, args []any) (func() (any, error), error) {
		veto, err := o.inhibited(name, domain.Signal{Req: input})
		if err != nil {
			return nil, err
		}
		if veto {
			return nil, domain.Invariant(domain.ErrInhibited, name, nil)
		}
		ctx, span := o.tracer.Start(ctx, o.name+"."+name, trace.WithAttributes(
			attribute.String("cells.node", o.name),
			attribute.String("cells.attribute", name),
			attribute.String("cells.action_id", actionID(ctx)),
		))
		o.emit(ctx, domain.Record{Type: domain.RecordComputeStart, Attribute: name, Req: input})

		return func() (any, error) {
			defer span.End()
			var res any
			if r := o.nexus[name]; r != nil {
				var err error
				if res, err = r(ctx, o.reactorFlora(), args...); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					return nil, err
				}
			}
			if err := o.notify(name, domain.Signal{Req: input, Res: res}); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			o.emit(ctx, domain.Record{Type: domain.RecordComputeEnd, Attribute: name, Value: res, Req: input, Res: res})
			return res, nil
		}, nil
	}
}

func (o *Organism) reactorFlora() *Flora {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.flora
}
