// Package blueprint builds organism trees from declarative YAML files.
//
// A blueprint names an organism, declares its attributes, its Cistern input
// and the registry reactors bound to its attributes, and nests the
// blueprints of its children under their slot:
//
//	name: root
//	dna:
//	  version: {kind: config, req: string}
//	  ping:    {kind: event, req: string}
//	input: {version: "1"}
//	endo:
//	  worker:
//	    dna:
//	      ping: {kind: listen, req: string}
//	      last: {kind: state, req: "string?"}
//	    nexus: {ping: "assign:last"}
package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/registry"
	"github.com/aretw0/cells/pkg/sequence"
)

// Blueprint is the declarative description of one organism and its children.
type Blueprint struct {
	Name  string                `mapstructure:"name"`
	Dna   map[string]any        `mapstructure:"dna"`
	Input map[string]any        `mapstructure:"input"`
	Nexus map[string]string     `mapstructure:"nexus"`
	Host  map[string]any        `mapstructure:"host"`
	Endo  map[string]*Blueprint `mapstructure:"endo"`
}

// Parse decodes a blueprint document. Unknown keys are rejected.
func Parse(data []byte) (*Blueprint, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("blueprint: invalid yaml: %w", err)
	}
	return Decode(raw)
}

// Decode builds a blueprint from an already parsed document.
func Decode(raw map[string]any) (*Blueprint, error) {
	var bp Blueprint
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &bp,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("blueprint: %w", err)
	}
	return &bp, nil
}

// ParseTOML decodes a blueprint written in TOML.
func ParseTOML(data []byte) (*Blueprint, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("blueprint: invalid toml: %w", err)
	}
	return Decode(raw)
}

// Load reads and parses a blueprint file. Files ending in .toml are read as
// TOML, everything else as YAML.
func Load(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blueprint: failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Genome sequences the declarations of the blueprint. Endo holds the dna of
// every nested child.
func (b *Blueprint) Genome() (dna.Genome, error) {
	nuclei, err := sequence.Sequence(b.Dna)
	if err != nil {
		return dna.Genome{}, fmt.Errorf("%s: dna: %w", b.label(), err)
	}
	g := dna.Genome{Nuclei: nuclei}
	if len(b.Host) > 0 {
		if g.Host, err = sequence.Sequence(b.Host); err != nil {
			return dna.Genome{}, fmt.Errorf("%s: host: %w", b.label(), err)
		}
	}
	if len(b.Endo) > 0 {
		g.Endo = make(map[string]dna.Dna, len(b.Endo))
		for _, slot := range b.Slots() {
			child, err := sequence.Sequence(b.Endo[slot].Dna)
			if err != nil {
				return dna.Genome{}, fmt.Errorf("%s/%s: dna: %w", b.label(), slot, err)
			}
			g.Endo[slot] = child
		}
	}
	return g, nil
}

// Slots returns the child slot names in lexical order.
func (b *Blueprint) Slots() []string {
	slots := make([]string, 0, len(b.Endo))
	for slot := range b.Endo {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// Build creates the organism tree, children first, and absorbs every child
// into its slot. The tree is returned as an embryo; call Genesis on it.
// Organisms without a name are named after their slot.
func (b *Blueprint) Build(reg *registry.Registry, opts ...organism.Option) (*organism.Organism, error) {
	return b.build(reg, b.Name, opts)
}

func (b *Blueprint) build(reg *registry.Registry, name string, opts []organism.Option) (*organism.Organism, error) {
	if b.Name != "" {
		name = b.Name
	}
	g, err := b.Genome()
	if err != nil {
		return nil, err
	}
	nexus, err := reg.Nexus(b.Nexus)
	if err != nil {
		return nil, fmt.Errorf("%s: nexus: %w", b.label(), err)
	}

	nodeOpts := append([]organism.Option(nil), opts...)
	if name != "" {
		nodeOpts = append(nodeOpts, organism.WithName(name))
	}
	o, err := organism.New(g, nexus, b.Input, nodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.label(), err)
	}

	if len(b.Endo) == 0 {
		return o, nil
	}
	children := make(map[string]*organism.Organism, len(b.Endo))
	for _, slot := range b.Slots() {
		child, err := b.Endo[slot].build(reg, slot, opts)
		if err != nil {
			return nil, err
		}
		children[slot] = child
	}
	if err := o.Absorb(children); err != nil {
		return nil, fmt.Errorf("%s: %w", b.label(), err)
	}
	return o, nil
}

func (b *Blueprint) label() string {
	if b.Name == "" {
		return "blueprint"
	}
	return b.Name
}
