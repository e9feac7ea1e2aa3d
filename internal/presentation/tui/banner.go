package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   ___ ___  _ __   ___ ___  _ __ __| |",
	"  / __/ _ \\| '_ \\ / __/ _ \\| '__/ _` |",
	" | (_| (_) | | | | (_| (_) | | | (_| |",
	"  \\___\\___/|_| |_|\\___\\___/|_|  \\__,_|",
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8"}

// PrintBanner writes the concord banner, coloured when w is a colour terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
