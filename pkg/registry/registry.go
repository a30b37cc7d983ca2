// Package registry names reactors so declarative blueprints can bind them to
// attributes.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/cells/pkg/organism"
)

// ErrReactorNotFound is returned when a name resolves to no reactor.
var ErrReactorNotFound = errors.New("reactor not found")

// Factory builds a reactor from the argument following the colon in a
// reference such as "assign:count".
type Factory func(arg string) organism.Reactor

// Registry manages the available reactors.
type Registry struct {
	mu        sync.RWMutex
	reactors  map[string]organism.Reactor
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		reactors:  make(map[string]organism.Reactor),
		factories: make(map[string]Factory),
	}
}

// Register adds a reactor to the registry.
// If a reactor with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn organism.Reactor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactors[name] = fn
}

// RegisterFactory adds a parameterised reactor, referenced as "name:arg".
func (r *Registry) RegisterFactory(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Lookup resolves a reference: a plain reactor name, or "factory:arg".
func (r *Registry) Lookup(ref string) (organism.Reactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if fn, ok := r.reactors[ref]; ok {
		return fn, nil
	}
	if name, arg, ok := strings.Cut(ref, ":"); ok {
		if f, ok := r.factories[name]; ok {
			return f(arg), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrReactorNotFound, ref)
}

// Names lists registered reactors and factories ("name:") in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.reactors)+len(r.factories))
	for name := range r.reactors {
		names = append(names, name)
	}
	for name := range r.factories {
		names = append(names, name+":")
	}
	sort.Strings(names)
	return names
}

// Nexus resolves a binding of attribute names to reactor references.
func (r *Registry) Nexus(bindings map[string]string) (organism.Nexus, error) {
	nexus := make(organism.Nexus, len(bindings))
	var errs []error
	for attr, ref := range bindings {
		fn, err := r.Lookup(ref)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", attr, err))
			continue
		}
		nexus[attr] = fn
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nexus, nil
}
