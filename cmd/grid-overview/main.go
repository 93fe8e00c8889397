// Command grid-overview renders the National Grid square layout: green
// for squares with GB land, blue for sea.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mholden/osmaps/internal/render"
)

func main() {
	scale := flag.Int("scale", 40, "Pixels per 100 km grid square")
	out := flag.String("out", "grid.png", "Output PNG path")
	flag.Parse()

	if *scale < 2 {
		fmt.Fprintln(os.Stderr, "Error: scale must be at least 2")
		os.Exit(2)
	}

	img := render.GridOverview(*scale)
	if err := render.WritePNG(*out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}
