package organism

import "context"

// Pending is the result of a query started with Membrane.QueryAsync.
type Pending struct {
	done chan struct{}
	res  any
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func settled(res any, err error) *Pending {
	p := newPending()
	p.settle(res, err)
	return p
}

func (p *Pending) settle(res any, err error) {
	p.res, p.err = res, err
	close(p.done)
}

// Done is closed once the query has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the query settles or ctx is done. Giving up on ctx does
// not stop the reactor.
func (p *Pending) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
