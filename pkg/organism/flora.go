package organism

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Flora is the context handed to every reactor.
type Flora struct {
	// Nuclei reaches every attribute of the organism itself.
	Nuclei *Transport
	// Endo holds a query-only view per child slot.
	Endo map[string]*Transport
	// Host is the config/event view of the host, nil for roots.
	Host *Transport
}

// QueryEach runs the query name on every child exposing it, concurrently,
// and returns the results keyed by slot. The first failure cancels the
// context handed to the remaining queries.
func (f *Flora) QueryEach(ctx context.Context, name string, args ...any) (map[string]any, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string]any, len(f.Endo))
	for slot, t := range f.Endo {
		if !t.Has(name) {
			continue
		}
		g.Go(func() error {
			res, err := t.Query(gctx, name, args...)
			if err != nil {
				return fmt.Errorf("%s: %w", slot, err)
			}
			mu.Lock()
			out[slot] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
