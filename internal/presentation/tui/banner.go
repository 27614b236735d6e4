package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Greens from canopy to trunk
	lines := []struct {
		text  string
		color string
	}{
		{"    _         _", "#86efac"},
		{"   /_\\  _ _ _| |__  ___ _ _", "#4ade80"},
		{"  / _ \\| '_| '_ \\/ _ \\ '_|", "#22c55e"},
		{" /_/ \\_\\_| |_.__/\\___/_|", "#16a34a"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
