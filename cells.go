package cells

import (
	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/schema"
	"github.com/aretw0/cells/pkg/sequence"
)

type (
	// Dna is a classified attribute declaration.
	Dna = dna.Dna
	// Amino is a single attribute.
	Amino = dna.Amino
	// Genome groups a node's own dna with the dna expected from its slots and host.
	Genome = dna.Genome
)

// Attribute constructors.
var (
	Config = dna.Config
	Event  = dna.Event
	Listen = dna.Listen
	Query  = dna.Query
)

// State declares a state attribute with a default value.
func State(req schema.Type, def any) Amino { return dna.State(req, def) }

// Sequence normalizes a declaration bundle (classified dna, raw maps or YAML
// bytes) into Dna.
func Sequence(src any) (Dna, error) { return sequence.Sequence(src) }

// Mix builds a Genome from a node's dna, the dna declared per child slot and
// the dna the node expects from its host.
func Mix(nuclei Dna, endo map[string]Dna, host Dna) Genome {
	return dna.Mix(nuclei, endo, host)
}

// Clone creates an embryo from a flat declaration. The declaration goes through
// Sequence first, so raw bundles are accepted as well.
func Clone(src any, nexus organism.Nexus, input map[string]any, opts ...organism.Option) (*organism.Organism, error) {
	d, err := Sequence(src)
	if err != nil {
		return nil, err
	}
	return organism.New(Genome{Nuclei: d}, nexus, input, opts...)
}

// Spawn creates an embryo from a full Genome.
func Spawn(g Genome, nexus organism.Nexus, input map[string]any, opts ...organism.Option) (*organism.Organism, error) {
	return organism.New(g, nexus, input, opts...)
}
