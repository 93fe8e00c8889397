// Command altitude-stats prints the altitude distribution of a National
// Grid square or area.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mholden/osmaps/internal/grid"
	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/internal/stats"
	"github.com/mholden/osmaps/internal/terrain"
)

func main() {
	dataDir := flag.String("data", "", "Root of the unzipped terr50_gagg_gb distribution")
	square := flag.String("square", "", "100 km square (NY) or 10x10 km tile (NY12) at the south-west corner")
	dims := flag.String("dims", "", "Area extent in units of the named square, e.g. 3x2 (default 1x1)")
	asJSON := flag.Bool("json", false, "Emit the full analysis as JSON")
	flag.Parse()

	if *dataDir == "" || *square == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dataDir, *square, *dims, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, square, dims string, asJSON bool) error {
	area, err := grid.ResolveArea(square, dims)
	if err != nil {
		return err
	}
	source, err := terrain.NewSource(dataDir)
	if err != nil {
		return err
	}
	m, err := terrain.Assemble(source, area, nil)
	if err != nil {
		return err
	}
	if !m.HasLand {
		return fmt.Errorf("area %s contains no GB land", area.Label())
	}

	scheme, err := render.NewScheme(render.DefaultScheme, m.MaxAlt)
	if err != nil {
		return err
	}
	a := stats.Analyse(m, scheme)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	fmt.Printf("Altitude analysis for %s\n", a.Area)
	fmt.Printf("  Cells:         %d (%dx%d)\n", a.Cells, a.Cols, a.Rows)
	fmt.Printf("  Unique values: %d\n", a.Unique)
	fmt.Printf("  Range:         %.1f to %.1f m (%.1f m)\n", a.MinAlt, a.MaxAlt, a.Range)
	fmt.Printf("  Mean:          %.1f m\n", a.Mean)
	fmt.Printf("  Most common:   %.1f m (%d cells, %.1f%%)\n", a.MostCommon.Alt, a.MostCommon.Count, a.MostCommon.Percent)
	if len(a.Notable) > 0 {
		fmt.Println("  Notable altitudes:")
		for _, n := range a.Notable {
			fmt.Printf("    %8.1f m  %8d cells  %5.1f%%\n", n.Alt, n.Count, n.Percent)
		}
	}
	fmt.Println("  Histogram:")
	for _, b := range a.Histogram {
		fmt.Printf("    [%6.0f, %6.0f)  %8d cells  %s\n", b.Lo, b.Hi, b.Count, b.Hex)
	}
	return nil
}
