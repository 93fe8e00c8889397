// Package postcode imports and serves the Ordnance Survey Code-Point
// Open dataset: one CSV of postcode centroids per postcode area, shipped
// together in codepo_gb.zip.
package postcode

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Record is one postcode centroid.
type Record struct {
	Postcode     string // normalised, single internal space
	Area         string // postcode area letters, e.g. NG
	Quality      int    // OS positional quality indicator
	Easting      int
	Northing     int
	CountryCode  string
	CountyCode   string
	DistrictCode string
	WardCode     string
}

// Positioned reports whether the record carries a usable position.
// Records without one have easting and northing zero.
func (r Record) Positioned() bool {
	return r.Easting != 0 || r.Northing != 0
}

// Normalise upper-cases a postcode and collapses internal whitespace to
// a single space, so NG2 6AG, "ng2  6ag" and "NG26AG " compare equal.
func Normalise(pc string) string {
	fields := strings.Fields(strings.ToUpper(pc))
	joined := strings.Join(fields, "")
	if len(joined) < 5 {
		return joined
	}
	// The inward part of a full postcode is always the final three
	// characters.
	return joined[:len(joined)-3] + " " + joined[len(joined)-3:]
}

// The Doc/ header file inside the zip describes the CSV columns; the
// import refuses to run when it does not match this layout.
const columnsDocFile = "Doc/Code-Point_Open_Column_Headers.csv"

var wantShortNames = []string{"PC", "PQ", "EA", "NO", "CY", "RH", "LH", "CC", "DC", "WC"}
var wantLongNames = []string{
	"Postcode", "Positional_quality_indicator", "Eastings", "Northings", "Country_code",
	"NHS_regional_HA_code", "NHS_HA_code",
	"Admin_county_code", "Admin_district_code", "Admin_ward_code",
}

const csvDataDir = "Data/CSV/"

// importBatchSize bounds memory while loading ~1.7M rows.
const importBatchSize = 5000

// ImportZip reads codepo_gb.zip and loads every postcode row into the
// store, replacing existing data. Returns the number of rows loaded.
func ImportZip(zipPath string, store Store, logger *zap.SugaredLogger) (int, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", zipPath, err)
	}
	defer zr.Close()

	if err := checkColumnsDoc(&zr.Reader); err != nil {
		return 0, err
	}
	if err := store.Reset(); err != nil {
		return 0, fmt.Errorf("resetting store: %w", err)
	}

	total := 0
	files := 0
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, csvDataDir) || !strings.HasSuffix(f.Name, ".csv") {
			continue
		}
		area := strings.ToUpper(strings.TrimSuffix(path.Base(f.Name), ".csv"))
		n, err := importAreaFile(f, area, store)
		if err != nil {
			return total, fmt.Errorf("importing %s: %w", f.Name, err)
		}
		logger.Debugf("loaded %d postcodes for area %s", n, area)
		total += n
		files++
	}
	if files == 0 {
		return 0, fmt.Errorf("%s: no %s*.csv files found", zipPath, csvDataDir)
	}
	logger.Infof("imported %d postcodes from %d area files", total, files)
	return total, nil
}

func checkColumnsDoc(zr *zip.Reader) error {
	f, err := zr.Open(columnsDocFile)
	if err != nil {
		return fmt.Errorf("no column headers doc %s in zip: %w", columnsDocFile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo, want := range [][]string{wantShortNames, wantLongNames} {
		if !scanner.Scan() {
			return fmt.Errorf("%s: missing line %d", columnsDocFile, lineNo+1)
		}
		got := strings.Split(scanner.Text(), ",")
		if !namesMatch(got, want) {
			return fmt.Errorf("%s line %d: columns %v do not match expected layout", columnsDocFile, lineNo+1, got)
		}
	}
	return nil
}

func namesMatch(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func importAreaFile(f *zip.File, area string, store Store) (int, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = len(wantLongNames)

	batch := make([]Record, 0, importBatchSize)
	n := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		rec, err := recordFromRow(row, area)
		if err != nil {
			return n, err
		}
		batch = append(batch, rec)
		if len(batch) == importBatchSize {
			if err := store.Insert(batch); err != nil {
				return n, err
			}
			n += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := store.Insert(batch); err != nil {
			return n, err
		}
		n += len(batch)
	}
	return n, nil
}

func recordFromRow(row []string, area string) (Record, error) {
	quality, err := strconv.Atoi(row[1])
	if err != nil {
		return Record{}, fmt.Errorf("postcode %s: bad quality %q", row[0], row[1])
	}
	easting, err := strconv.Atoi(row[2])
	if err != nil {
		return Record{}, fmt.Errorf("postcode %s: bad easting %q", row[0], row[2])
	}
	northing, err := strconv.Atoi(row[3])
	if err != nil {
		return Record{}, fmt.Errorf("postcode %s: bad northing %q", row[0], row[3])
	}
	return Record{
		Postcode:     Normalise(row[0]),
		Area:         area,
		Quality:      quality,
		Easting:      easting,
		Northing:     northing,
		CountryCode:  row[4],
		CountyCode:   row[7],
		DistrictCode: row[8],
		WardCode:     row[9],
	}, nil
}
