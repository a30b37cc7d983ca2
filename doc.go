/*
Package cells is a runtime for trees of typed, stateful cells called organisms.

Each organism declares named attributes of five kinds: config, state, event,
listen and query. The runtime turns that declaration into private storage, a
validated public API (the Membrane) and a wiring protocol between a host and
the children it absorbs.

# Usage

	counter, err := cells.Clone(cells.Dna{
		"count": cells.State(schema.Int(), 0),
		"bump":  cells.Event(schema.Int()),
	}, organism.Nexus{
		"bump": organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
			cur, _ := f.Nuclei.Get("count")
			return f.Nuclei.Set(ctx, "count", cur.(int)+args[0].(int))
		}),
	}, nil)
	if err != nil {
		log.Fatal(err)
	}

	api, err := counter.Genesis()
	if err != nil {
		log.Fatal(err)
	}
	_ = api.Emit(ctx, "bump", 2)

Composed trees are usually described in YAML and built with the blueprint
package; the cells command line tool can inspect and serve them.
*/
package cells
