// Command postcode-import loads the Code-Point Open distribution
// (codepo_gb.zip) into a postcode store.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mholden/osmaps/internal/log"
	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/pkg/config"
)

func main() {
	zipPath := flag.String("zip", "codepo_gb.zip", "Path to the Code-Point Open zip")
	backend := flag.String("backend", "sqlite", "Store backend: 'sqlite' or 'postgres'")
	sqlitePath := flag.String("sqlite", "postcodes.db", "SQLite database path (sqlite backend)")
	postgresDSN := flag.String("dsn", "", "PostgreSQL DSN (postgres backend)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := postcode.OpenStore(config.PostcodeData{
		Backend:     *backend,
		SQLitePath:  *sqlitePath,
		PostgresDSN: *postgresDSN,
	})
	if err != nil {
		log.Errorf("opening postcode store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	count, err := postcode.ImportZip(*zipPath, store, log.GetSugaredLogger())
	if err != nil {
		log.Errorf("importing %s: %v", *zipPath, err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d postcodes from %s\n", count, *zipPath)
}
