package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/organism"
)

// Overlay marks organisms to highlight on the graph.
type Overlay struct {
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart of an organism tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Organism with children: [[Subroutine]]
// - Leaf: [Rectangle]
// Solid edges carry the slot name; dotted edges show the attributes routed
// to child listeners. Inactive organisms are styled as such.
func GenerateMermaid(root *organism.Organism, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var inactive []string
	walk(root, func(o *organism.Organism) {
		id := sanitizeMermaidID(o.Name())
		opener, closer := "[", "]"
		switch {
		case o.Host() == nil:
			opener, closer = "((", "))"
		case len(o.Slots()) > 0:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, o.Name(), closer))
		if o.Stage() == organism.StageInactive {
			inactive = append(inactive, id)
		}

		for _, slot := range o.Slots() {
			child, _ := o.Child(slot)
			childID := sanitizeMermaidID(child.Name())
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", id, slot, childID))
			for _, name := range routed(o.Dna(), child.Dna()) {
				sb.WriteString(fmt.Sprintf("    %s -. ⚡ %s .-> %s\n", id, name, childID))
			}
		}
	})

	if len(inactive) > 0 || (overlay != nil && len(overlay.Highlight) > 0) {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef inactive fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range inactive {
			sb.WriteString(fmt.Sprintf("    class %s inactive;\n", id))
		}
		if overlay != nil {
			seen := make(map[string]bool)
			for _, name := range overlay.Highlight {
				id := sanitizeMermaidID(name)
				if id != "" && !seen[id] {
					seen[id] = true
					sb.WriteString(fmt.Sprintf("    class %s highlight;\n", id))
				}
			}
		}
	}

	return sb.String()
}

// walk visits o and its descendants depth first, in slot order.
func walk(o *organism.Organism, fn func(*organism.Organism)) {
	fn(o)
	for _, slot := range o.Slots() {
		child, _ := o.Child(slot)
		walk(child, fn)
	}
}

// routed lists the event and state attributes of host that child listens to.
func routed(host, child dna.Dna) []string {
	var names []string
	for name, a := range host {
		if a.Kind != dna.KindEvent && a.Kind != dna.KindState {
			continue
		}
		if l, ok := child[name]; ok && l.Kind == dna.KindListen {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
