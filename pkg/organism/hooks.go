package organism

import (
	"fmt"
	"sync"

	"github.com/aretw0/cells/pkg/domain"
)

type probeEntry struct {
	fn domain.Probe
}

type inhibitorEntry struct {
	fn domain.Inhibitor
}

type hooks struct {
	mu         sync.RWMutex
	probes     map[string][]*probeEntry
	inhibitors map[string][]*inhibitorEntry
	observers  []*observerEntry
}

func (h *hooks) init() {
	h.probes = make(map[string][]*probeEntry)
	h.inhibitors = make(map[string][]*inhibitorEntry)
}

// clear drops probes and inhibitors. Observers survive.
func (h *hooks) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.init()
}

func (o *Organism) observable(name string) error {
	a, ok := o.genome.Nuclei[name]
	if !ok || !a.Kind.Observable() {
		return domain.Invariant(domain.ErrNotObservable, name, nil)
	}
	return nil
}

// Observe attaches a probe to a state, event or query attribute. Probes run
// after the effect has committed, in registration order.
func (o *Organism) Observe(name string, p domain.Probe) (func(), error) {
	if err := o.observable(name); err != nil {
		return nil, err
	}
	e := &probeEntry{fn: p}
	o.hooks.mu.Lock()
	o.hooks.probes[name] = append(o.hooks.probes[name], e)
	o.hooks.mu.Unlock()

	return func() {
		o.hooks.mu.Lock()
		defer o.hooks.mu.Unlock()
		list := o.hooks.probes[name]
		for i, cur := range list {
			if cur == e {
				o.hooks.probes[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}, nil
}

// Inhibit attaches an inhibitor to a state, event or query attribute. The
// first inhibitor returning true vetoes the effect.
func (o *Organism) Inhibit(name string, in domain.Inhibitor) (func(), error) {
	if err := o.observable(name); err != nil {
		return nil, err
	}
	e := &inhibitorEntry{fn: in}
	o.hooks.mu.Lock()
	o.hooks.inhibitors[name] = append(o.hooks.inhibitors[name], e)
	o.hooks.mu.Unlock()

	return func() {
		o.hooks.mu.Lock()
		defer o.hooks.mu.Unlock()
		list := o.hooks.inhibitors[name]
		for i, cur := range list {
			if cur == e {
				o.hooks.inhibitors[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}, nil
}

func (o *Organism) notify(name string, sig domain.Signal) error {
	o.hooks.mu.RLock()
	probes := append([]*probeEntry(nil), o.hooks.probes[name]...)
	o.hooks.mu.RUnlock()

	for _, p := range probes {
		if err := runProbe(p.fn, sig); err != nil {
			o.logger.Warn("probe failed", "attribute", name, "error", err)
			return domain.Invariant(domain.ErrProbeFailed, name, err)
		}
	}
	return nil
}

func (o *Organism) inhibited(name string, sig domain.Signal) (bool, error) {
	o.hooks.mu.RLock()
	inhibitors := append([]*inhibitorEntry(nil), o.hooks.inhibitors[name]...)
	o.hooks.mu.RUnlock()

	for _, in := range inhibitors {
		veto, err := runInhibitor(in.fn, sig)
		if err != nil {
			o.logger.Warn("inhibitor failed", "attribute", name, "error", err)
			return false, domain.Invariant(domain.ErrInhibitorFailed, name, err)
		}
		if veto {
			o.logger.Debug("inhibited", "attribute", name)
			return true, nil
		}
	}
	return false, nil
}

func runProbe(p domain.Probe, sig domain.Signal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return p(sig)
}

func runInhibitor(in domain.Inhibitor, sig domain.Signal) (veto bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			veto, err = false, panicError(r)
		}
	}()
	return in(sig)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
