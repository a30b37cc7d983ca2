package organism

import (
	"context"
	"sort"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
)

// Transport is an unvalidated view over the bindings of one organism.
// Reactors use it to reach their own attributes, their children and their
// host. Calls outside the view fail with domain.ErrNotExposed.
type Transport struct {
	owner *Organism
	kinds []dna.Kind
	names map[string]struct{}
}

func (o *Organism) view(kinds []dna.Kind, declared dna.Dna) *Transport {
	t := &Transport{owner: o, kinds: kinds}
	if len(declared) > 0 {
		t.names = make(map[string]struct{}, len(declared))
		for name := range declared {
			t.names[name] = struct{}{}
		}
	}
	return t
}

// ViewForHost returns the view a host holds on this organism: queries only.
func (o *Organism) ViewForHost() *Transport {
	return o.view([]dna.Kind{dna.KindQuery}, nil)
}

// ViewForChild returns the view a child holds on this organism: config and
// events only, further restricted to declared when it is not empty.
func (o *Organism) ViewForChild(declared dna.Dna) *Transport {
	return o.view([]dna.Kind{dna.KindConfig, dna.KindEvent}, declared)
}

// Name returns the name of the organism behind the view.
func (t *Transport) Name() string { return t.owner.name }

func (t *Transport) binding(name string) (*binding, bool) {
	t.owner.mu.RLock()
	b, ok := t.owner.bindings[name]
	t.owner.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if t.names != nil {
		if _, ok := t.names[name]; !ok {
			return nil, false
		}
	}
	if t.kinds != nil && !kindIn(b.amino.Kind, t.kinds) {
		return nil, false
	}
	return b, true
}

func (t *Transport) lookup(name string, want ...dna.Kind) (*binding, error) {
	b, ok := t.binding(name)
	if !ok || !kindIn(b.amino.Kind, want) {
		return nil, domain.Invariant(domain.ErrNotExposed, name, nil)
	}
	return b, nil
}

// Has reports whether name is reachable through the view.
func (t *Transport) Has(name string) bool {
	_, ok := t.binding(name)
	return ok
}

// Kind returns the kind of a reachable attribute.
func (t *Transport) Kind(name string) (dna.Kind, bool) {
	b, ok := t.binding(name)
	if !ok {
		return "", false
	}
	return b.amino.Kind, true
}

// Names lists the reachable attributes in lexical order.
func (t *Transport) Names() []string {
	t.owner.mu.RLock()
	all := make([]string, 0, len(t.owner.bindings))
	for name := range t.owner.bindings {
		all = append(all, name)
	}
	t.owner.mu.RUnlock()

	names := all[:0]
	for _, name := range all {
		if t.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Get reads a config or state value.
func (t *Transport) Get(name string) (any, error) {
	b, err := t.lookup(name, dna.KindConfig, dna.KindState)
	if err != nil {
		return nil, err
	}
	return b.get(), nil
}

// Set writes a state value without validation.
func (t *Transport) Set(ctx context.Context, name string, value any) error {
	b, err := t.lookup(name, dna.KindState)
	if err != nil {
		return err
	}
	return b.set(ctx, value)
}

// Emit fires an event without validation.
func (t *Transport) Emit(ctx context.Context, name string, args ...any) error {
	b, err := t.lookup(name, dna.KindEvent)
	if err != nil {
		return err
	}
	input := pack(args)
	return b.fire(ctx, input, unpack(b.amino, input, len(args)))
}

// Query invokes a query without validation and waits for its result.
func (t *Transport) Query(ctx context.Context, name string, args ...any) (any, error) {
	b, err := t.lookup(name, dna.KindQuery)
	if err != nil {
		return nil, err
	}
	input := pack(args)
	finish, err := b.ask(ctx, input, unpack(b.amino, input, len(args)))
	if err != nil {
		return nil, err
	}
	return finish()
}

func kindIn(k dna.Kind, kinds []dna.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
