package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pipeline ASCII banner to w.
// Colors follow the node palette and degrade with the terminal's profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"        _            ___          ", "#10b981"},
		{"  _ __ (_)_ __  ___ | (_)_ __  ___", "#8b5cf6"},
		{" | '_ \\| | '_ \\/ -_)| | | '_ \\/ -_)", "#f59e0b"},
		{" | .__/|_| .__/\\___||_|_|_| |_\\___|", "#06b6d4"},
		{" |_|     |_|                       ", "#3b82f6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Accent colors s with a hex color when the terminal supports it.
func Accent(s, hex string) string {
	return termenv.String(s).Foreground(termenv.ColorProfile().Color(hex)).String()
}
