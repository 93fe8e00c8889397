// Command postcode-report summarises an imported Code-Point Open store
// per postcode area, and can plot dot maps from it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/pkg/config"
)

func main() {
	backend := flag.String("backend", "sqlite", "Store backend: 'sqlite' or 'postgres'")
	sqlitePath := flag.String("sqlite", "postcodes.db", "SQLite database path (sqlite backend)")
	postgresDSN := flag.String("dsn", "", "PostgreSQL DSN (postgres backend)")
	plot := flag.String("plot", "", "Write a GB-wide postcode dot map to this PNG path")
	height := flag.Int("height", 1250, "Dot map height in pixels")
	flag.Parse()

	store, err := postcode.OpenStore(config.PostcodeData{
		Backend:     *backend,
		SQLitePath:  *sqlitePath,
		PostgresDSN: *postgresDSN,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(store, *plot, *height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(store postcode.Store, plot string, height int) error {
	summaries, err := store.AreaSummaries()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return fmt.Errorf("store is empty, run postcode-import first")
	}

	total := 0
	fmt.Printf("%-5s %9s %22s %22s\n", "Area", "Count", "Easting range", "Northing range")
	for _, s := range summaries {
		total += s.Count
		fmt.Printf("%-5s %9d %10d-%-11d %10d-%-11d\n",
			s.Area, s.Count, s.MinEasting, s.MaxEasting, s.MinNorthing, s.MaxNorthing)
	}
	fmt.Printf("%d positioned postcodes in %d areas\n", total, len(summaries))

	if plot == "" {
		return nil
	}
	window := postcode.GBWindow(height)
	recs, err := store.InWindow(window.MinEasting, window.MinNorthing, window.MaxEasting, window.MaxNorthing)
	if err != nil {
		return err
	}
	if err := render.WritePNG(plot, postcode.DotMap(recs, window)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s with %d postcodes\n", plot, len(recs))
	return nil
}
