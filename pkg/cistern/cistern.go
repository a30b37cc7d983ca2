// Package cistern holds the Config and State values of a single organism.
package cistern

import (
	"sync"

	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/schema"
)

// Cistern stores the current value of every config and state attribute.
// Safe for concurrent use.
type Cistern struct {
	dna dna.Dna

	mu      sync.RWMutex
	storage map[string]any
}

// New validates input against d and builds the storage.
//
// Every config attribute needs a non-nil, valid input value. State attributes
// take their validated input value when present, their declared default
// otherwise. Defaults are stored as declared, without validation. Failures
// are fatal and returned as *domain.InvariantError.
func New(d dna.Dna, input map[string]any) (*Cistern, error) {
	d = d.Clone()
	c := &Cistern{
		dna:     d,
		storage: make(map[string]any),
	}

	for _, name := range d.Names() {
		amino := d[name]
		switch amino.Kind {
		case dna.KindConfig:
			raw, ok := input[name]
			if !ok || raw == nil {
				return nil, domain.Invariant(domain.ErrMissingConfig, name, nil)
			}
			v, err := schema.CheckKey(name, amino.Req, raw)
			if err != nil {
				return nil, domain.Invariant(domain.ErrInvalidConfig, name, err)
			}
			c.storage[name] = v
		case dna.KindState:
			raw, ok := input[name]
			if !ok || raw == nil {
				c.storage[name] = amino.Default
				continue
			}
			v, err := schema.CheckKey(name, amino.Req, raw)
			if err != nil {
				return nil, domain.Invariant(domain.ErrInvalidState, name, err)
			}
			c.storage[name] = v
		}
	}
	return c, nil
}

// Get returns the current value of key.
func (c *Cistern) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.storage[key]
	return v, ok
}

// SetState overwrites a state value. Keys that are not state attributes are
// ignored.
func (c *Cistern) SetState(key string, value any) {
	if a, ok := c.dna[key]; !ok || a.Kind != dna.KindState {
		return
	}
	c.mu.Lock()
	c.storage[key] = value
	c.mu.Unlock()
}

// Snapshot returns a copy of all current values of the given kind.
func (c *Cistern) Snapshot(kind dna.Kind) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any)
	for name, a := range c.dna {
		if a.Kind == kind {
			out[name] = c.storage[name]
		}
	}
	return out
}

// Config returns the config values.
func (c *Cistern) Config() map[string]any { return c.Snapshot(dna.KindConfig) }

// State returns the state values.
func (c *Cistern) State() map[string]any { return c.Snapshot(dna.KindState) }
