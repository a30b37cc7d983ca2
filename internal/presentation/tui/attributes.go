package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/cells/pkg/dna"
)

var kindColors = map[dna.Kind]string{
	dna.KindConfig: "#a78bfa",
	dna.KindState:  "#34d399",
	dna.KindEvent:  "#fbbf24",
	dna.KindListen: "#60a5fa",
	dna.KindQuery:  "#f472b6",
}

// PrintAttributes writes one line per attribute, coloured by kind.
func PrintAttributes(w io.Writer, d dna.Dna) {
	PrintAttributesWithProfile(w, d, termenv.NewOutput(w).ColorProfile())
}

// PrintAttributesWithProfile is PrintAttributes with an explicit colour
// profile; termenv.Ascii disables colours.
func PrintAttributesWithProfile(w io.Writer, d dna.Dna, p termenv.Profile) {
	width := 0
	for name := range d {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range d.Names() {
		a := d[name]
		kind := p.String(fmt.Sprintf("%-6s", a.Kind)).Foreground(p.Color(kindColors[a.Kind]))
		fmt.Fprintf(w, "  %-*s  %s  %s\n", width, name, kind, signature(a))
	}
}

func signature(a dna.Amino) string {
	req := "any"
	if a.Req != nil {
		req = a.Req.Name()
	}
	switch a.Kind {
	case dna.KindQuery:
		res := "any"
		if a.Res != nil {
			res = a.Res.Name()
		}
		return req + " -> " + res
	case dna.KindState:
		return fmt.Sprintf("%s = %v", req, a.Default)
	}
	return req
}
