package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                   _             ",
	"  _ __   __ _ _ __| | ___ _   _  ",
	" | '_ \\ / _` | '__| |/ _ \\ | | | ",
	" | |_) | (_| | |  | |  __/ |_| | ",
	" | .__/ \\__,_|_|  |_|\\___|\\__, | ",
	" |_|                       |___/  ",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the ASCII art banner followed by the version line.
// Colors are dropped when w is not a color-capable terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.EnvColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
