package organism

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/cells/pkg/cistern"
	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/ids"
)

// Reactor is the behavior bound to an attribute. Events, listeners and state
// reactors ignore the returned value; queries resolve with it.
type Reactor func(ctx context.Context, f *Flora, args ...any) (any, error)

// Nexus maps attribute names to reactors.
type Nexus map[string]Reactor

// Sink adapts a reactor that produces no value.
func Sink(fn func(ctx context.Context, f *Flora, args ...any) error) Reactor {
	return func(ctx context.Context, f *Flora, args ...any) (any, error) {
		return nil, fn(ctx, f, args...)
	}
}

// Stage is the lifecycle position of an Organism.
type Stage int

const (
	StageEmbryo Stage = iota
	StageActive
	StageInactive
)

func (s Stage) String() string {
	switch s {
	case StageEmbryo:
		return "embryo"
	case StageActive:
		return "active"
	case StageInactive:
		return "inactive"
	}
	return "unknown"
}

// Organism is a node of the cells tree.
type Organism struct {
	name     string
	genome   dna.Genome
	nexus    Nexus
	cistern  *cistern.Cistern
	idSource ids.Source
	logger   *slog.Logger
	clock    func() time.Time
	tracer   trace.Tracer

	mu         sync.RWMutex
	stage      Stage
	activating bool
	root       bool
	host       *Organism
	endo       map[string]*Organism
	bindings   map[string]*binding
	flora      *Flora
	membrane   *Membrane
	routes     map[string][]route

	hooks hooks
}

// New builds an embryo. The input is validated against the config and state
// attributes of the genome.
func New(genome dna.Genome, nexus Nexus, input map[string]any, opts ...Option) (*Organism, error) {
	genome = genome.Clone()
	reactors := make(Nexus, len(nexus))
	for name, r := range nexus {
		reactors[name] = r
	}
	store, err := cistern.New(genome.Nuclei, input)
	if err != nil {
		return nil, err
	}
	o := &Organism{
		genome:  genome,
		nexus:   reactors,
		cistern: store,
		endo:    make(map[string]*Organism),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.applyDefaults()
	o.hooks.init()
	return o, nil
}

// Name returns the identity stamped on emitted records.
func (o *Organism) Name() string { return o.name }

// Dna returns a copy of the organism's own attributes.
func (o *Organism) Dna() dna.Dna { return o.genome.Nuclei.Clone() }

// Genome returns a copy of the full structural descriptor.
func (o *Organism) Genome() dna.Genome { return o.genome.Clone() }

// Stage returns the lifecycle stage.
func (o *Organism) Stage() Stage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stage
}

// Alive reports whether the organism is active.
func (o *Organism) Alive() bool { return o.Stage() == StageActive }

// IsRoot reports whether the organism had no host at genesis.
func (o *Organism) IsRoot() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.root
}

// Host returns the absorbing organism, or nil.
func (o *Organism) Host() *Organism {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.host
}

// Slots returns the absorbed slot names in lexical order.
func (o *Organism) Slots() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	slots := make([]string, 0, len(o.endo))
	for slot := range o.endo {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// Child returns the organism absorbed under slot.
func (o *Organism) Child(slot string) (*Organism, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	c, ok := o.endo[slot]
	return c, ok
}

// Config returns a snapshot of the config values.
func (o *Organism) Config() map[string]any { return o.cistern.Config() }

// State returns a snapshot of the state values.
func (o *Organism) State() map[string]any { return o.cistern.State() }

// API returns the membrane. Before genesis, and after apoptosis, every call
// on it fails with domain.ErrNotAlive.
func (o *Organism) API() *Membrane {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.membrane == nil {
		return &Membrane{owner: o}
	}
	return o.membrane
}

// Trace returns a membrane whose calls carry id as action id.
func (o *Organism) Trace(id string) *Membrane { return o.API().Trace(id) }
