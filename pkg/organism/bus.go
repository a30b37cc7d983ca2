package organism

import (
	"context"

	"github.com/aretw0/cells/pkg/domain"
)

type observerEntry struct {
	fn domain.Observer
}

// Subscribe registers obs for every record emitted by this organism and its
// descendants. Delivery is synchronous and in subscription order. The
// returned function removes the subscription.
func (o *Organism) Subscribe(obs domain.Observer) func() {
	e := &observerEntry{fn: obs}
	o.hooks.mu.Lock()
	o.hooks.observers = append(o.hooks.observers, e)
	o.hooks.mu.Unlock()

	return func() {
		o.hooks.mu.Lock()
		defer o.hooks.mu.Unlock()
		for i, cur := range o.hooks.observers {
			if cur == e {
				o.hooks.observers = append(o.hooks.observers[:i:i], o.hooks.observers[i+1:]...)
				return
			}
		}
	}
}

func (o *Organism) emit(ctx context.Context, rec domain.Record) {
	rec.NodeID = o.name
	rec.ActionID = actionID(ctx)
	rec.Timestamp = o.clock()
	o.publish(rec)
}

// publish delivers rec locally, then bubbles it to the host.
func (o *Organism) publish(rec domain.Record) {
	o.hooks.mu.RLock()
	observers := make([]*observerEntry, len(o.hooks.observers))
	copy(observers, o.hooks.observers)
	o.hooks.mu.RUnlock()

	for _, e := range observers {
		e.fn(rec)
	}
	if host := o.Host(); host != nil {
		host.publish(rec)
	}
}
