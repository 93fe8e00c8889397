// Package terrain reads Ordnance Survey Terrain 50 altitude data: ESRI
// ASCII grid files distributed as one zip per 10x10 km National Grid tile.
package terrain

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NoData marks cells with no altitude sample: sea tiles, off-grid tiles
// and anything else outside the dataset.
const NoData = -1000.0

// Raster is the altitude grid for one tile. Data is stored with row 0 as
// the southernmost row, so Data[0][0] is the south-west corner sample;
// the source file presents rows north first.
type Raster struct {
	Tile      string // tile name, e.g. NY12
	Cols      int
	RowsCount int
	XCorner   int // easting of the SW corner, metres
	YCorner   int // northing of the SW corner, metres
	CellSize  int // metres between samples
	Data      [][]float64
	MinAlt    float64
	MaxAlt    float64
}

// Z returns the altitude at column c, row r (row 0 = southernmost).
func (ra *Raster) Z(c, r int) float64 {
	return ra.Data[r][c]
}

var headerFields = []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"}

// ParseASC parses the contents of a Terrain 50 .asc file. The format is
// five header lines (ncols, nrows, xllcorner, yllcorner, cellsize, each
// an integer) followed by nrows lines of ncols space-separated altitude
// values in metres.
func ParseASC(r io.Reader, tile string) (*Raster, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	header := make(map[string]int, len(headerFields))
	for lineNo := 1; lineNo <= len(headerFields); lineNo++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("tile %s: short file, missing header line %d", tile, lineNo)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, fmt.Errorf("tile %s: malformed header line %d: %q", tile, lineNo, scanner.Text())
		}
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("tile %s: header field %s is not an integer: %q", tile, fields[0], fields[1])
		}
		header[strings.ToLower(fields[0])] = value
	}
	for _, name := range headerFields {
		if _, ok := header[name]; !ok {
			return nil, fmt.Errorf("tile %s: header field %s missing", tile, name)
		}
	}

	ra := &Raster{
		Tile:      tile,
		Cols:      header["ncols"],
		RowsCount: header["nrows"],
		XCorner:   header["xllcorner"],
		YCorner:   header["yllcorner"],
		CellSize:  header["cellsize"],
	}
	if ra.Cols <= 0 || ra.RowsCount <= 0 || ra.CellSize <= 0 {
		return nil, fmt.Errorf("tile %s: implausible header: %dx%d cells of %dm", tile, ra.Cols, ra.RowsCount, ra.CellSize)
	}

	ra.Data = make([][]float64, ra.RowsCount)
	first := true

	for fileRow := 0; fileRow < ra.RowsCount; fileRow++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("tile %s: expected %d data rows, got %d", tile, ra.RowsCount, fileRow)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != ra.Cols {
			return nil, fmt.Errorf("tile %s: data row %d has %d values, expected %d", tile, fileRow+1, len(fields), ra.Cols)
		}
		// The first data row in the file is the most northerly; store it
		// at the top index so row 0 is the SW corner row.
		row := make([]float64, ra.Cols)
		for col, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("tile %s: bad altitude value %q at row %d col %d", tile, field, fileRow+1, col+1)
			}
			row[col] = v
			if first || v < ra.MinAlt {
				ra.MinAlt = v
			}
			if first || v > ra.MaxAlt {
				ra.MaxAlt = v
			}
			first = false
		}
		ra.Data[ra.RowsCount-fileRow-1] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tile %s: read: %w", tile, err)
	}

	return ra, nil
}
