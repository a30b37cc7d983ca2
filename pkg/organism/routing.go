package organism

import (
	"context"
	"sort"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
)

type route struct {
	slot  string
	child *Organism
}

// buildRoutes maps every event and state attribute of nuclei to the children
// declaring a listener with the same name, in slot order.
func buildRoutes(nuclei dna.Dna, endo map[string]*Organism) map[string][]route {
	slots := make([]string, 0, len(endo))
	for slot := range endo {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	routes := make(map[string][]route)
	for name, a := range nuclei {
		if a.Kind != dna.KindEvent && a.Kind != dna.KindState {
			continue
		}
		for _, slot := range slots {
			child := endo[slot]
			if l, ok := child.genome.Nuclei[name]; ok && l.Kind == dna.KindListen {
				routes[name] = append(routes[name], route{slot: slot, child: child})
			}
		}
	}
	return routes
}

func (o *Organism) route(ctx context.Context, name string, input any, args []any) error {
	o.mu.RLock()
	routes := o.routes[name]
	o.mu.RUnlock()
	for _, r := range routes {
		if err := r.child.listen(ctx, name, input, args); err != nil {
			return err
		}
	}
	return nil
}

// listen runs the listener reactor of a child. Children without a reactor
// for the listener, or no longer alive, are skipped. A state change arrives
// as a domain.Signal carrying Prev and Next.
func (o *Organism) listen(ctx context.Context, name string, input any, args []any) error {
	r := o.nexus[name]
	if r == nil || !o.Alive() {
		return nil
	}
	rec := domain.Record{Type: domain.RecordListen, Attribute: name, Value: input}
	if change, ok := input.(domain.Signal); ok {
		rec.Value, rec.Prev, rec.Next = change.Next, change.Prev, change.Next
	}
	o.emit(ctx, rec)
	_, err := r(ctx, o.reactorFlora(), args...)
	return err
}
