package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cells banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"          _ _     ", "#34d399"},
		{"   ___ ___| | |___ ", "#2dd4bf"},
		{"  / __/ _ \\ | / __|", "#22d3ee"},
		{" | (_|  __/ | \\__ \\", "#38bdf8"},
		{"  \\___\\___|_|_|___/", "#60a5fa"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
