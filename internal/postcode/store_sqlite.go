package postcode

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the postcode data in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite postcode store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS postcodes (
	postcode      TEXT PRIMARY KEY,
	area          TEXT NOT NULL,
	quality       INTEGER NOT NULL,
	easting       INTEGER NOT NULL,
	northing      INTEGER NOT NULL,
	country_code  TEXT,
	county_code   TEXT,
	district_code TEXT,
	ward_code     TEXT
);
CREATE INDEX IF NOT EXISTS idx_postcodes_area ON postcodes(area);
CREATE INDEX IF NOT EXISTS idx_postcodes_position ON postcodes(easting, northing);
`

func (s *SQLiteStore) ensureSchema() error {
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("creating postcode schema: %w", err)
	}
	return nil
}

// Reset drops and recreates the postcode table
func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec(`DROP TABLE IF EXISTS postcodes`); err != nil {
		return fmt.Errorf("dropping postcode table: %w", err)
	}
	return s.ensureSchema()
}

// Insert adds a batch of records in one transaction
func (s *SQLiteStore) Insert(recs []Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO postcodes
		(postcode, area, quality, easting, northing, country_code, county_code, district_code, ward_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.Exec(r.Postcode, r.Area, r.Quality, r.Easting, r.Northing,
			r.CountryCode, r.CountyCode, r.DistrictCode, r.WardCode); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting %s: %w", r.Postcode, err)
		}
	}
	return tx.Commit()
}

const recordColumns = `postcode, area, quality, easting, northing, country_code, county_code, district_code, ward_code`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var r Record
	err := row.Scan(&r.Postcode, &r.Area, &r.Quality, &r.Easting, &r.Northing,
		&r.CountryCode, &r.CountyCode, &r.DistrictCode, &r.WardCode)
	return r, err
}

// ByPostcode looks up one normalised postcode
func (s *SQLiteStore) ByPostcode(pc string) (*Record, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM postcodes WHERE postcode = ?`, Normalise(pc))
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying postcode %s: %w", pc, err)
	}
	return &r, nil
}

func (s *SQLiteStore) collect(query string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ByArea returns every record in a postcode area
func (s *SQLiteStore) ByArea(area string) ([]Record, error) {
	return s.collect(`SELECT `+recordColumns+` FROM postcodes WHERE area = ? ORDER BY postcode`,
		normaliseArea(area))
}

// InWindow returns positioned records inside an easting/northing window
func (s *SQLiteStore) InWindow(minE, minN, maxE, maxN int) ([]Record, error) {
	return s.collect(`SELECT `+recordColumns+` FROM postcodes
		WHERE easting >= ? AND easting < ? AND northing >= ? AND northing < ?
		  AND NOT (easting = 0 AND northing = 0)
		ORDER BY postcode`, minE, maxE, minN, maxN)
}

// AreaSummaries reports positioned-record counts and extents per area
func (s *SQLiteStore) AreaSummaries() ([]AreaSummary, error) {
	rows, err := s.db.Query(`
		SELECT area, COUNT(*), MIN(easting), MAX(easting), MIN(northing), MAX(northing)
		FROM postcodes
		WHERE NOT (easting = 0 AND northing = 0)
		GROUP BY area
		ORDER BY area`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []AreaSummary
	for rows.Next() {
		var a AreaSummary
		if err := rows.Scan(&a.Area, &a.Count, &a.MinEasting, &a.MaxEasting, &a.MinNorthing, &a.MaxNorthing); err != nil {
			return nil, err
		}
		sums = append(sums, a)
	}
	return sums, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error { return s.db.Close() }
