package postcode

import (
	"fmt"
	"strings"

	"github.com/mholden/osmaps/pkg/config"
)

func normaliseArea(area string) string {
	return strings.ToUpper(strings.TrimSpace(area))
}

// AreaSummary is the per-postcode-area report row: how many postcodes
// the area has and the bounding box of their positions.
type AreaSummary struct {
	Area        string `json:"area"`
	Count       int    `json:"count"`
	MinEasting  int    `json:"min_easting"`
	MaxEasting  int    `json:"max_easting"`
	MinNorthing int    `json:"min_northing"`
	MaxNorthing int    `json:"max_northing"`
}

// Store is a queryable home for imported Code-Point Open data.
type Store interface {
	// Reset drops and recreates the postcode table ahead of an import.
	Reset() error
	// Insert adds a batch of records.
	Insert(recs []Record) error

	// ByPostcode looks up one normalised postcode; nil when absent.
	ByPostcode(pc string) (*Record, error)
	// ByArea returns every record in a postcode area, e.g. NG.
	ByArea(area string) ([]Record, error)
	// InWindow returns positioned records inside a National Grid
	// easting/northing window (min inclusive, max exclusive).
	InWindow(minE, minN, maxE, maxN int) ([]Record, error)
	// AreaSummaries reports positioned-record counts and extents per
	// area, ordered by area.
	AreaSummaries() ([]AreaSummary, error)

	Close() error
}

// OpenStore builds the configured postcode store backend.
func OpenStore(cfg config.PostcodeData) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("postcodes: sqlite backend needs sqlite_path")
		}
		return OpenSQLite(cfg.SQLitePath)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postcodes: postgres backend needs postgres_dsn")
		}
		return OpenPostgres(cfg.PostgresDSN)
	case "":
		return nil, fmt.Errorf("postcodes: no backend configured")
	default:
		return nil, fmt.Errorf("postcodes: unknown backend %q", cfg.Backend)
	}
}
