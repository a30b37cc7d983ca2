package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/schema"
)

// GenerateMarkdown documents every organism of a tree with a table of its
// attributes.
func GenerateMarkdown(root *organism.Organism) string {
	var sb strings.Builder
	walk(root, func(o *organism.Organism) {
		depth := 1
		for h := o.Host(); h != nil; h = h.Host() {
			depth++
		}
		if depth > 6 {
			depth = 6
		}
		sb.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", depth), o.Name()))
		sb.WriteString(fmt.Sprintf("Stage: `%s`", o.Stage()))
		if slots := o.Slots(); len(slots) > 0 {
			sb.WriteString(fmt.Sprintf(" · Endo: %s", strings.Join(slots, ", ")))
		}
		sb.WriteString("\n\n")

		d := o.Dna()
		if len(d) == 0 {
			sb.WriteString("_No attributes._\n\n")
			return
		}
		sb.WriteString("| Attribute | Kind | Input | Result / Default |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, name := range d.Names() {
			a := d[name]
			extra := ""
			switch a.Kind {
			case dna.KindQuery:
				extra = "`" + typeName(a.Res) + "`"
			case dna.KindState:
				extra = fmt.Sprintf("`%v`", a.Default)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | `%s` | %s |\n", name, a.Kind, typeName(a.Req), extra))
		}
		sb.WriteString("\n")
	})
	return sb.String()
}

func typeName(t schema.Type) string {
	if t == nil {
		return "any"
	}
	return t.Name()
}
