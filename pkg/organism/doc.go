/*
Package organism implements the lifecycle and membrane runtime of cells.

An Organism is built from a Genome, a Nexus of reactors and the input for its
Cistern. It starts as an embryo, may absorb children, and becomes active with
Genesis, which returns its Membrane: the validated public API.

	counter, err := organism.New(dna.Genome{Nuclei: dna.Dna{
		"count": dna.State(schema.Int(), 0),
		"bump":  dna.Event(schema.Int()),
	}}, organism.Nexus{
		"bump": organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
			cur, _ := f.Nuclei.Get("count")
			return f.Nuclei.Set(ctx, "count", cur.(int)+args[0].(int))
		}),
	}, nil)
	if err != nil {
		return err
	}
	api, err := counter.Genesis()
	if err != nil {
		return err
	}
	err = api.Emit(ctx, "bump", 2)

# Visibility

Reactors receive a Flora: the organism's own full transport (Nuclei), a
query-only transport per child slot (Endo) and, when absorbed, a
config/event-only transport of the host (Host). A host can never mutate the
state of its children, and a child can never query or mutate its host.

# Errors

Invalid input at the membrane returns a *schema.ValidationError and leaves
the organism untouched. Programmer errors (double genesis, writing config,
calls on a dead organism, vetoed queries, failing probes) return a
*domain.InvariantError; use domain.IsFatal to tell the tiers apart.

# Tracing

The action id of emitted records travels in the context. Membrane.Trace
returns a membrane that stamps every call, including the listener and child
calls it causes, with the given id.
*/
package organism
