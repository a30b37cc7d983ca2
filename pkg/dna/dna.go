package dna

import "sort"

// Dna maps attribute names to their declaration.
type Dna map[string]Amino

// Clone returns a shallow copy of d.
func (d Dna) Clone() Dna {
	if d == nil {
		return nil
	}
	out := make(Dna, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Names returns the attribute names in lexical order.
func (d Dna) Names() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Pick returns the attributes whose kind is one of kinds.
func (d Dna) Pick(kinds ...Kind) Dna {
	out := make(Dna)
	for k, a := range d {
		for _, want := range kinds {
			if a.Kind == want {
				out[k] = a
				break
			}
		}
	}
	return out
}

// NamesOf returns the sorted names of the attributes of the given kinds.
func (d Dna) NamesOf(kinds ...Kind) []string {
	return d.Pick(kinds...).Names()
}

// Lookup returns the amino for name and whether it is declared.
func (d Dna) Lookup(name string) (Amino, bool) {
	a, ok := d[name]
	return a, ok
}

// Genome is the structural descriptor of an organism: its own attributes,
// the attributes of each child slot and, optionally, those of its host.
type Genome struct {
	Nuclei Dna
	Endo   map[string]Dna
	Host   Dna
}

// Clone returns a copy of g that shares no map with it.
func (g Genome) Clone() Genome {
	out := Genome{Nuclei: g.Nuclei.Clone(), Host: g.Host.Clone()}
	if g.Endo != nil {
		out.Endo = make(map[string]Dna, len(g.Endo))
		for slot, d := range g.Endo {
			out.Endo[slot] = d.Clone()
		}
	}
	return out
}

// Mix builds a Genome.
func Mix(nuclei Dna, endo map[string]Dna, host Dna) Genome {
	return Genome{Nuclei: nuclei, Endo: endo, Host: host}
}
