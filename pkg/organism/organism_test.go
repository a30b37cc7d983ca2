package organism_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/ids"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var counterDna = dna.Dna{
	"version": dna.Config(schema.String()),
	"count":   dna.State(schema.Int(), 0),
	"bump":    dna.Event(schema.Int()),
	"double":  dna.Query(schema.Int(), schema.Int()),
}

func counterNexus() organism.Nexus {
	return organism.Nexus{
		"bump": organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
			cur, err := f.Nuclei.Get("count")
			if err != nil {
				return err
			}
			return f.Nuclei.Set(ctx, "count", cur.(int)+args[0].(int))
		}),
		"double": func(_ context.Context, _ *organism.Flora, args ...any) (any, error) {
			return args[0].(int) * 2, nil
		},
	}
}

func newCounter(t *testing.T, opts ...organism.Option) *organism.Organism {
	t.Helper()
	opts = append([]organism.Option{organism.WithName("counter")}, opts...)
	o, err := organism.New(dna.Genome{Nuclei: counterDna}, counterNexus(), map[string]any{"version": "1.0"}, opts...)
	require.NoError(t, err)
	return o
}

// recorder collects records delivered to an observer.
type recorder struct {
	mu      sync.Mutex
	records []domain.Record
}

func (r *recorder) observe(rec domain.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recorder) all() []domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Record(nil), r.records...)
}

func (r *recorder) types() []domain.RecordType {
	var out []domain.RecordType
	for _, rec := range r.all() {
		out = append(out, rec.Type)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("MissingConfig", func(t *testing.T) {
		_, err := organism.New(dna.Genome{Nuclei: counterDna}, nil, nil)
		require.Error(t, err)
		assert.True(t, domain.IsFatal(err))
		assert.ErrorIs(t, err, domain.ErrMissingConfig)
	})

	t.Run("GeneratedName", func(t *testing.T) {
		o, err := organism.New(dna.Genome{Nuclei: counterDna}, nil, map[string]any{"version": "1"},
			organism.WithIDSource(ids.Sequential("cell")))
		require.NoError(t, err)
		assert.Equal(t, "cell-1", o.Name())
	})

	t.Run("DefaultName", func(t *testing.T) {
		o, err := organism.New(dna.Genome{}, nil, nil)
		require.NoError(t, err)
		assert.Len(t, o.Name(), 9)
	})

	t.Run("PrivateGenome", func(t *testing.T) {
		d := dna.Dna{"version": dna.Config(schema.String())}
		endo := map[string]dna.Dna{"worker": {}}
		nexus := organism.Nexus{}
		o, err := organism.New(dna.Mix(d, endo, nil), nexus, map[string]any{"version": "1"})
		require.NoError(t, err)

		d["secret"] = dna.Config(schema.String())
		endo["other"] = dna.Dna{}
		nexus["version"] = func(context.Context, *organism.Flora, ...any) (any, error) { return nil, nil }
		o.Dna()["leak"] = dna.Event(schema.Any())

		api, err := o.Genesis()
		require.NoError(t, err)
		assert.False(t, api.Has("secret"))
		assert.False(t, api.Has("leak"))
		assert.Equal(t, map[string]any{"version": "1"}, o.Config())
		assert.NotContains(t, o.Genome().Endo, "other")
	})
}

func TestState_NaN(t *testing.T) {
	ctx := context.Background()
	o, err := organism.New(dna.Genome{Nuclei: dna.Dna{
		"level": dna.State(schema.Float(), math.NaN()),
	}}, nil, nil, organism.WithName("gauge"))
	require.NoError(t, err)
	rec := &recorder{}
	o.Subscribe(rec.observe)
	api, err := o.Genesis()
	require.NoError(t, err)

	require.NoError(t, api.Set(ctx, "level", math.NaN()))
	assert.Empty(t, rec.types(), "NaN over NaN is a no-op")

	require.NoError(t, api.Set(ctx, "level", 1.5))
	require.NoError(t, api.Set(ctx, "level", 1.5))
	assert.Equal(t, []domain.RecordType{domain.RecordUpdate}, rec.types())
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	o := newCounter(t)
	assert.Equal(t, organism.StageEmbryo, o.Stage())

	_, err := o.API().Get("count")
	assert.ErrorIs(t, err, domain.ErrNotAlive, "membrane calls before genesis are fatal")

	api, err := o.Genesis()
	require.NoError(t, err)
	assert.True(t, o.Alive())
	assert.True(t, o.IsRoot())
	assert.Same(t, api, o.API())

	_, err = o.Genesis()
	assert.ErrorIs(t, err, domain.ErrAlreadyAlive)

	require.NoError(t, api.Set(ctx, "count", 3))
	o.Apoptosis()
	assert.Equal(t, organism.StageInactive, o.Stage())

	_, err = api.Get("count")
	assert.ErrorIs(t, err, domain.ErrNotAlive)
	assert.True(t, domain.IsFatal(err))
	assert.Equal(t, 3, o.State()["count"], "storage survives apoptosis")

	_, err = o.Genesis()
	assert.ErrorIs(t, err, domain.ErrApoptotic)

	assert.NotPanics(t, o.Apoptosis)
}

func TestApoptosis_Embryo(t *testing.T) {
	o := newCounter(t)
	o.Apoptosis()
	assert.Equal(t, organism.StageEmbryo, o.Stage())
}

func TestRecords(t *testing.T) {
	ctx := context.Background()
	at := time.UnixMilli(1700000000000)
	o := newCounter(t, organism.WithClock(func() time.Time { return at }))
	rec := &recorder{}
	o.Subscribe(rec.observe)
	api, err := o.Genesis()
	require.NoError(t, err)

	require.NoError(t, api.Emit(ctx, "bump", 2))
	res, err := api.Query(ctx, "double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, res)

	assert.Equal(t, []domain.RecordType{
		domain.RecordEvent,
		domain.RecordUpdate,
		domain.RecordComputeStart,
		domain.RecordComputeEnd,
	}, rec.types())

	all := rec.all()
	for _, r := range all {
		assert.Equal(t, "counter", r.NodeID)
		assert.Equal(t, domain.SystemAction, r.ActionID)
		assert.Equal(t, at, r.Timestamp)
	}
	assert.Equal(t, 2, all[0].Value)
	assert.Equal(t, 0, all[1].Prev)
	assert.Equal(t, 2, all[1].Next)
	assert.Equal(t, 21, all[2].Req)
	assert.Equal(t, 42, all[3].Res)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	o := newCounter(t)
	var order []string
	o.Subscribe(func(domain.Record) { order = append(order, "first") })
	stop := o.Subscribe(func(domain.Record) { order = append(order, "second") })
	o.Subscribe(func(domain.Record) { order = append(order, "third") })
	api, err := o.Genesis()
	require.NoError(t, err)

	require.NoError(t, api.Set(ctx, "count", 1))
	assert.Equal(t, []string{"first", "second", "third"}, order)

	order = nil
	stop()
	require.NoError(t, api.Set(ctx, "count", 2))
	assert.Equal(t, []string{"first", "third"}, order)
}
