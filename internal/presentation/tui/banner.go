package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  ____            _        _   ____        _   ", "#34d399"},
	{" |  _ \\ __ _  ___| | _____| |_| __ )  ___ | |_ ", "#2dd4bf"},
	{" | |_) / _` |/ __| |/ / _ \\ __|  _ \\ / _ \\| __|", "#22d3ee"},
	{" |  _ < (_| | (__|   <  __/ |_| |_) | (_) | |_ ", "#38bdf8"},
	{" |_| \\_\\__,_|\\___|_|\\_\\___|\\__|____/ \\___/ \\__|", "#60a5fa"},
}

// PrintBanner writes the racketbot banner to w using the colour profile of w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, p.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
