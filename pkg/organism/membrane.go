package organism

import (
	"context"
	"sort"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/schema"
)

// Membrane is the validated public API of an active organism. It has no
// exported fields: invoking its methods is the only way to affect the
// organism. Listen attributes never appear on it.
type Membrane struct {
	owner   *Organism
	traceID string
	table   map[string]entry
}

type entry struct {
	kind dna.Kind
	call func(ctx context.Context, args []any) (any, error)
	// start is set for queries only; see binding.ask.
	start func(ctx context.Context, args []any) (func() (any, error), error)
}

func (o *Organism) buildMembrane(bindings map[string]*binding) *Membrane {
	table := make(map[string]entry, len(bindings))
	for name, b := range bindings {
		switch b.amino.Kind {
		case dna.KindConfig:
			table[name] = entry{kind: dna.KindConfig, call: func(_ context.Context, args []any) (any, error) {
				if len(args) > 0 {
					return nil, domain.Invariant(domain.ErrReadOnly, name, nil)
				}
				return b.get(), nil
			}}
		case dna.KindState:
			table[name] = entry{kind: dna.KindState, call: func(ctx context.Context, args []any) (any, error) {
				if len(args) == 0 {
					return b.get(), nil
				}
				v, err := schema.CheckKey(name, b.amino.Req, pack(args))
				if err != nil {
					return nil, err
				}
				return nil, b.set(ctx, v)
			}}
		case dna.KindEvent:
			table[name] = entry{kind: dna.KindEvent, call: func(ctx context.Context, args []any) (any, error) {
				v, err := schema.CheckKey(name, b.amino.Req, pack(args))
				if err != nil {
					return nil, err
				}
				return nil, b.fire(ctx, v, unpack(b.amino, v, len(args)))
			}}
		case dna.KindQuery:
			start := func(ctx context.Context, args []any) (func() (any, error), error) {
				v, err := schema.CheckKey(name, b.amino.Req, pack(args))
				if err != nil {
					return nil, err
				}
				return b.ask(ctx, v, unpack(b.amino, v, len(args)))
			}
			table[name] = entry{kind: dna.KindQuery, start: start, call: func(ctx context.Context, args []any) (any, error) {
				finish, err := start(ctx, args)
				if err != nil {
					return nil, err
				}
				return finish()
			}}
		}
	}
	return &Membrane{owner: o, table: table}
}

// Trace returns a membrane whose calls, and every effect they cause, carry
// id as action id.
func (m *Membrane) Trace(id string) *Membrane {
	return &Membrane{owner: m.owner, traceID: id, table: m.table}
}

func (m *Membrane) scope(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.traceID != "" {
		ctx = WithTraceID(ctx, m.traceID)
	}
	return ctx
}

func (m *Membrane) enter(name string) (entry, bool, error) {
	if !m.owner.Alive() {
		return entry{}, false, domain.Invariant(domain.ErrNotAlive, name, nil)
	}
	e, ok := m.table[name]
	return e, ok, nil
}

// Call invokes name with the calling convention of its kind: reading
// config and state with no arguments, writing state with one, firing events
// and running queries. Unknown names resolve to (nil, nil).
func (m *Membrane) Call(ctx context.Context, name string, args ...any) (any, error) {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return nil, err
	}
	return e.call(m.scope(ctx), args)
}

// Get reads a config or state value.
func (m *Membrane) Get(name string) (any, error) {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return nil, err
	}
	if e.kind != dna.KindConfig && e.kind != dna.KindState {
		return nil, domain.Invariant(domain.ErrNotExposed, name, nil)
	}
	return e.call(context.Background(), nil)
}

// Set validates value and writes it to a state attribute. Invalid values
// return a *schema.ValidationError and leave the organism untouched.
func (m *Membrane) Set(ctx context.Context, name string, value any) error {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return err
	}
	switch e.kind {
	case dna.KindConfig:
		return domain.Invariant(domain.ErrReadOnly, name, nil)
	case dna.KindState:
		_, err := e.call(m.scope(ctx), []any{value})
		return err
	}
	return domain.Invariant(domain.ErrNotExposed, name, nil)
}

// Emit validates args and fires an event.
func (m *Membrane) Emit(ctx context.Context, name string, args ...any) error {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return err
	}
	if e.kind != dna.KindEvent {
		return domain.Invariant(domain.ErrNotExposed, name, nil)
	}
	_, err = e.call(m.scope(ctx), args)
	return err
}

// Query validates args, runs a query and waits for its result.
func (m *Membrane) Query(ctx context.Context, name string, args ...any) (any, error) {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return nil, err
	}
	if e.kind != dna.KindQuery {
		return nil, domain.Invariant(domain.ErrNotExposed, name, nil)
	}
	return e.call(m.scope(ctx), args)
}

// QueryAsync starts a query and returns without waiting for the reactor.
// Validation, inhibitors and the compute:start record happen before it
// returns; their failures are delivered through the Pending.
func (m *Membrane) QueryAsync(ctx context.Context, name string, args ...any) *Pending {
	e, ok, err := m.enter(name)
	if err != nil || !ok {
		return settled(nil, err)
	}
	if e.kind != dna.KindQuery {
		return settled(nil, domain.Invariant(domain.ErrNotExposed, name, nil))
	}
	finish, err := e.start(m.scope(ctx), args)
	if err != nil {
		return settled(nil, err)
	}
	p := newPending()
	go func() {
		p.settle(finish())
	}()
	return p
}

// Config returns a snapshot of the config values.
func (m *Membrane) Config() (map[string]any, error) {
	if !m.owner.Alive() {
		return nil, domain.Invariant(domain.ErrNotAlive, "", nil)
	}
	return m.owner.Config(), nil
}

// State returns a snapshot of the state values.
func (m *Membrane) State() (map[string]any, error) {
	if !m.owner.Alive() {
		return nil, domain.Invariant(domain.ErrNotAlive, "", nil)
	}
	return m.owner.State(), nil
}

// Has reports whether name is part of the membrane.
func (m *Membrane) Has(name string) bool {
	_, ok := m.table[name]
	return ok
}

// Kind returns the kind of a membrane attribute.
func (m *Membrane) Kind(name string) (dna.Kind, bool) {
	e, ok := m.table[name]
	return e.kind, ok
}

// Names lists the membrane attributes in lexical order.
func (m *Membrane) Names() []string {
	names := make([]string, 0, len(m.table))
	for name := range m.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Organism returns the organism behind the membrane.
func (m *Membrane) Organism() *Organism { return m.owner }
