package dna_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/schema"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, dna.Amino{Kind: dna.KindConfig, Req: schema.String()}, dna.Config(schema.String()))
	assert.Equal(t, dna.Amino{Kind: dna.KindState, Req: schema.Int(), Default: 7}, dna.State(schema.Int(), 7))
	assert.Equal(t, dna.Amino{Kind: dna.KindEvent, Req: schema.String()}, dna.Event(schema.String()))
	assert.Equal(t, dna.Amino{Kind: dna.KindListen, Req: schema.String()}, dna.Listen(schema.String()))
	assert.Equal(t, dna.Amino{Kind: dna.KindQuery, Req: schema.String(), Res: schema.Int()}, dna.Query(schema.String(), schema.Int()))

	// Only queries carry a response type.
	for _, a := range []dna.Amino{dna.Config(schema.Any()), dna.State(schema.Any(), nil), dna.Event(schema.Any()), dna.Listen(schema.Any())} {
		assert.Nil(t, a.Res, a.Kind)
	}
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, dna.KindConfig.Stored())
	assert.True(t, dna.KindState.Stored())
	assert.False(t, dna.KindEvent.Stored())

	assert.False(t, dna.KindConfig.Observable())
	assert.False(t, dna.KindListen.Observable())
	assert.True(t, dna.KindQuery.Observable())

	assert.False(t, dna.KindListen.Transportable())
	assert.True(t, dna.KindConfig.Transportable())
	assert.False(t, dna.Kind("nope").Valid())
}

func TestDna_Pick(t *testing.T) {
	d := dna.Dna{
		"version": dna.Config(schema.String()),
		"count":   dna.State(schema.Int(), 0),
		"ping":    dna.Event(schema.String()),
		"calc":    dna.Query(schema.Int(), schema.Int()),
	}

	assert.Equal(t, []string{"calc", "count", "ping", "version"}, d.Names())
	assert.Equal(t, []string{"ping", "version"}, d.NamesOf(dna.KindConfig, dna.KindEvent))
	assert.Len(t, d.Pick(dna.KindQuery), 1)

	c := d.Clone()
	delete(c, "calc")
	assert.Len(t, d, 4)
}

func TestAmino_Spread(t *testing.T) {
	assert.True(t, dna.Query(schema.Tuple(schema.Int(), schema.Int()), schema.Int()).Spread())
	assert.False(t, dna.Event(schema.Slice(schema.String())).Spread())
	assert.False(t, dna.Event(schema.String()).Spread())
}

func TestAmino_JSON(t *testing.T) {
	d := dna.Dna{
		"count": dna.State(schema.Int(), 7),
		"calc":  dna.Query(schema.Tuple(schema.Int(), schema.Int()), schema.Int()),
	}

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"count": {"kind": "state", "req": "int", "default": 7},
		"calc":  {"kind": "query", "req": "(int,int)", "res": "int"}
	}`, string(raw))

	var back dna.Dna
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, dna.KindQuery, back["calc"].Kind)
	assert.Equal(t, "(int,int)", back["calc"].Req.Name())
	assert.Equal(t, float64(7), back["count"].Default)

	var bad dna.Amino
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"wat","req":"int"}`), &bad))
}

func TestAmino_String(t *testing.T) {
	assert.Equal(t, "query(int) -> string", dna.Query(schema.Int(), schema.String()).String())
	assert.Equal(t, "state(int = 3)", dna.State(schema.Int(), 3).String())
	assert.Equal(t, "config(string)", dna.Config(schema.String()).String())
}

func TestGenome_Clone(t *testing.T) {
	g := dna.Mix(
		dna.Dna{"v": dna.Config(schema.String())},
		map[string]dna.Dna{"worker": {"ping": dna.Listen(schema.Any())}},
		dna.Dna{"heard": dna.Event(schema.Any())},
	)
	c := g.Clone()
	assert.Equal(t, g, c)

	c.Nuclei["x"] = dna.Event(schema.Any())
	c.Endo["worker"]["y"] = dna.Event(schema.Any())
	c.Endo["other"] = dna.Dna{}
	c.Host["z"] = dna.Event(schema.Any())
	assert.Len(t, g.Nuclei, 1)
	assert.Len(t, g.Endo, 1)
	assert.Len(t, g.Endo["worker"], 1)
	assert.Len(t, g.Host, 1)

	assert.Nil(t, dna.Genome{}.Clone().Endo)
}
