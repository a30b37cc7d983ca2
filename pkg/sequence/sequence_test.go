package sequence_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/schema"
	"github.com/aretw0/cells/pkg/sequence"
)

// byTypeName compares validators structurally through their names.
var byTypeName = cmp.Comparer(func(a, b schema.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
})

func expected() dna.Dna {
	return dna.Dna{
		"config": dna.Config(schema.String()),
		"event":  dna.Event(schema.String()),
		"lob":    dna.State(schema.Bool(), false),
		"query":  dna.Query(schema.String(), schema.Int()),
	}
}

func TestSequence_Classified(t *testing.T) {
	src := expected()
	d, err := sequence.Sequence(src)
	require.NoError(t, err)
	if diff := cmp.Diff(src, d, byTypeName); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}

	// The result is a copy.
	delete(d, "query")
	assert.Contains(t, src, "query")
}

func TestSequence_ClassifiedAnyMap(t *testing.T) {
	d, err := sequence.Sequence(map[string]any{
		"version": dna.Config(schema.String()),
		"count":   &dna.Amino{Kind: dna.KindState, Req: schema.Int(), Default: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, dna.KindConfig, d["version"].Kind)
	assert.Equal(t, 1, d["count"].Default)
}

func TestSequence_RawBundle(t *testing.T) {
	d, err := sequence.Sequence(map[string]any{
		"config": map[string]any{"kind": "config", "req": "string"},
		"event":  map[string]string{"type": "event", "req": "string"},
		"lob":    map[string]any{"kind": "state", "req": "bool = false"},
		"query":  map[string]any{"kind": "query", "req": "string", "res": "int"},
	})
	require.NoError(t, err)
	if diff := cmp.Diff(expected(), d, byTypeName); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dna.KindState, d["lob"].Kind)
}

func TestSequence_AnySourceIsEquivalent(t *testing.T) {
	yamlSrc := `
config: {kind: config, req: string}
event:  {kind: event, req: string}
lob:    {kind: state, req: bool, default: false}
query:  {kind: query, req: string, res: int}
`
	fromYAML, err := sequence.Sequence(yamlSrc)
	require.NoError(t, err)

	fromDecls, err := sequence.Sequence(map[string]sequence.Declaration{
		"config": {Kind: "config", Req: "string"},
		"event":  {Kind: "event", Req: schema.String()},
		"lob":    {Kind: "state", Req: "bool", Default: false},
		"query":  {Kind: "query", Req: "string", Res: "int"},
	})
	require.NoError(t, err)

	twice, err := sequence.Sequence(fromYAML)
	require.NoError(t, err)

	for name, got := range map[string]dna.Dna{"yaml": fromYAML, "declarations": fromDecls, "twice": twice} {
		if diff := cmp.Diff(expected(), got, byTypeName); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestSequence_EmbeddedDefaults(t *testing.T) {
	d, err := sequence.Sequence(map[string]any{
		"count":  map[string]any{"kind": "state", "req": "int = 7"},
		"status": map[string]any{"kind": "state", "req": "string = 'idle'"},
		"plain":  map[string]any{"kind": "state", "req": "int"},
		"wins":   map[string]any{"kind": "state", "req": "int = 1", "default": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, d["count"].Default)
	assert.Equal(t, "idle", d["status"].Default)
	assert.Nil(t, d["plain"].Default)
	assert.Equal(t, 2, d["wins"].Default)
}

func TestSequence_Tuples(t *testing.T) {
	d := sequence.Must(map[string]any{
		"calc": map[string]any{"kind": "query", "req": "(int, int)", "res": "int"},
	})
	assert.True(t, d["calc"].Spread())
	assert.Equal(t, "(int,int)", d["calc"].Req.Name())
}

func TestSequence_Errors(t *testing.T) {
	_, err := sequence.Sequence(map[string]any{
		"a": map[string]any{"kind": "wat", "req": "string"},
		"b": map[string]any{"kind": "config", "req": "number"},
		"c": "not-a-map",
		"d": map[string]any{"kind": "event", "req": "string", "extra": true},
		"e": map[string]any{"kind": "config", "req": "string"},
	})
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 4)
	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		var ve *schema.ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, keys)

	_, err = sequence.Sequence(42)
	assert.Error(t, err)

	_, err = sequence.FromYAML([]byte("key: [unterminated"))
	assert.Error(t, err)

	assert.Panics(t, func() { sequence.Must(map[string]any{"x": 1}) })
}

func TestSequence_Empty(t *testing.T) {
	d, err := sequence.Sequence(nil)
	require.NoError(t, err)
	assert.Empty(t, d)

	d, err = sequence.Sequence(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, d)
}
