package organism

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cells/pkg/domain"
)

// topology serializes every change of host/child links. Holding it, Absorb
// reads the host chain before locking o, then locks o and its children
// downward only.
var topology sync.Mutex

// Absorb attaches children under named slots. It is only allowed on an
// embryo; when the genome declares endo slots, only those may be filled.
func (o *Organism) Absorb(children map[string]*Organism) error {
	topology.Lock()
	defer topology.Unlock()
	ancestors := o.ancestors()

	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.embryoLocked(); err != nil {
		return err
	}

	slots := make([]string, 0, len(children))
	for slot, child := range children {
		if child != nil {
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)

	seen := make(map[*Organism]string, len(slots))
	for _, slot := range slots {
		child := children[slot]
		if len(o.genome.Endo) > 0 {
			if _, ok := o.genome.Endo[slot]; !ok {
				return domain.Invariant(domain.ErrUnknownSlot, slot, nil)
			}
		}
		if _, dup := seen[child]; dup || child == o || ancestors[child] {
			return domain.Invariant(domain.ErrAlreadyAbsorbed, slot, nil)
		}
		for s, cur := range o.endo {
			if cur == child && s != slot {
				return domain.Invariant(domain.ErrAlreadyAbsorbed, slot, nil)
			}
		}
		if err := child.canAdopt(o, slot); err != nil {
			return err
		}
		seen[child] = slot
	}

	for _, slot := range slots {
		child := children[slot]
		if prev := o.endo[slot]; prev != nil && prev != child {
			prev.release(o)
		}
		child.adopt(o)
		o.endo[slot] = child
	}
	return nil
}

// ancestors returns the hosts above o. The caller holds topology and no
// organism lock.
func (o *Organism) ancestors() map[*Organism]bool {
	out := make(map[*Organism]bool)
	for h := o.Host(); h != nil; h = h.Host() {
		out[h] = true
	}
	return out
}

// dormant checks that o and every descendant can still go through genesis.
func (o *Organism) dormant(path string) error {
	o.mu.RLock()
	err := o.embryoLocked()
	children := make(map[string]*Organism, len(o.endo))
	for slot, child := range o.endo {
		children[slot] = child
	}
	o.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("genesis of %q: %w", path, err)
	}
	for slot, child := range children {
		if err := child.dormant(path + "/" + slot); err != nil {
			return err
		}
	}
	return nil
}

func (o *Organism) embryoLocked() error {
	switch {
	case o.stage == StageActive || o.activating:
		return domain.Invariant(domain.ErrAlreadyAlive, "", nil)
	case o.stage == StageInactive:
		return domain.Invariant(domain.ErrApoptotic, "", nil)
	}
	return nil
}

func (o *Organism) canAdopt(host *Organism, slot string) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	switch {
	case o.stage == StageActive || o.activating:
		return domain.Invariant(domain.ErrAlreadyAlive, slot, nil)
	case o.stage == StageInactive:
		return domain.Invariant(domain.ErrApoptotic, slot, nil)
	}
	if o.host != nil && o.host != host {
		return domain.Invariant(domain.ErrAlreadyAbsorbed, slot, nil)
	}
	return nil
}

func (o *Organism) adopt(host *Organism) {
	o.mu.Lock()
	o.host = host
	o.mu.Unlock()
}

func (o *Organism) release(host *Organism) {
	o.mu.Lock()
	if o.host == host {
		o.host = nil
	}
	o.mu.Unlock()
}

// Genesis activates the organism and, recursively, every absorbed child.
// It returns the membrane.
func (o *Organism) Genesis() (*Membrane, error) {
	o.mu.Lock()
	if err := o.embryoLocked(); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.activating = true
	bindings := o.buildBindings()
	o.bindings = bindings
	host := o.host
	children := make(map[string]*Organism, len(o.endo))
	for slot, child := range o.endo {
		children[slot] = child
	}
	o.mu.Unlock()

	// The whole subtree must be dormant before any of it is activated.
	for slot, child := range children {
		if err := child.dormant(slot); err != nil {
			o.mu.Lock()
			o.activating = false
			o.mu.Unlock()
			return nil, err
		}
	}

	flora := &Flora{
		Nuclei: o.view(nil, nil),
		Endo:   make(map[string]*Transport, len(children)),
	}
	if host != nil {
		flora.Host = host.ViewForChild(o.genome.Host)
	}

	slots := make([]string, 0, len(children))
	for slot := range children {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		child := children[slot]
		if _, err := child.Genesis(); err != nil {
			o.mu.Lock()
			o.activating = false
			o.mu.Unlock()
			return nil, fmt.Errorf("genesis of %q: %w", slot, err)
		}
		flora.Endo[slot] = child.ViewForHost()
	}

	membrane := o.buildMembrane(bindings)

	o.mu.Lock()
	o.flora = flora
	o.membrane = membrane
	o.routes = buildRoutes(o.genome.Nuclei, children)
	o.root = host == nil
	o.stage = StageActive
	o.activating = false
	o.mu.Unlock()

	o.logger.Debug("genesis", "children", len(children), "root", host == nil)
	return membrane, nil
}

// Apoptosis deactivates the organism and its children and drops their
// probes and inhibitors. Stored values are kept. It is a no-op unless the
// organism is active.
func (o *Organism) Apoptosis() {
	o.mu.Lock()
	if o.stage != StageActive {
		o.mu.Unlock()
		return
	}
	o.stage = StageInactive
	children := make([]*Organism, 0, len(o.endo))
	for _, child := range o.endo {
		children = append(children, child)
	}
	o.mu.Unlock()

	o.hooks.clear()
	for _, child := range children {
		child.Apoptosis()
	}
	o.logger.Debug("apoptosis")
}
