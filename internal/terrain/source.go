package terrain

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholden/osmaps/internal/grid"
)

// Source reads Terrain 50 tiles from an unzipped terr50_gagg_gb
// distribution: a data/ directory with one folder per 100 km grid square
// (lower case), each holding one zip per 10x10 km tile, named like
// ny12_OST50GRID_20230608.zip and containing NY12.asc.
type Source struct {
	BaseDir string
}

// NewSource returns a Source rooted at baseDir, which must contain the
// distribution's data directory.
func NewSource(baseDir string) (*Source, error) {
	dataDir := filepath.Join(baseDir, "data")
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no Terrain 50 data directory at %s", dataDir)
	}
	return &Source{BaseDir: baseDir}, nil
}

// ReadTile loads the altitude raster for one tile. A nil raster with a
// nil error means the dataset has no file for the tile, which indicates
// the whole tile is at sea.
func (s *Source) ReadTile(tile grid.TileRef) (*Raster, error) {
	squareDir := filepath.Join(s.BaseDir, "data", strings.ToLower(tile.Square))
	if _, err := os.Stat(squareDir); os.IsNotExist(err) {
		// The whole 100 km square is sea based.
		return nil, nil
	}

	prefix := strings.ToLower(tile.Name())
	entries, err := os.ReadDir(squareDir)
	if err != nil {
		return nil, fmt.Errorf("tile %s: reading %s: %w", tile.Name(), squareDir, err)
	}
	var matches []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".zip") {
			matches = append(matches, entry.Name())
		}
	}
	switch {
	case len(matches) == 0:
		// No data file for this tile: it is in the sea.
		return nil, nil
	case len(matches) > 1:
		return nil, fmt.Errorf("tile %s: multiple data zips found: %v", tile.Name(), matches)
	}

	return readTileZip(filepath.Join(squareDir, matches[0]), tile.Name())
}

func readTileZip(zipPath, tileName string) (*Raster, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("tile %s: opening %s: %w", tileName, zipPath, err)
	}
	defer zr.Close()

	wantFile := strings.ToUpper(tileName) + ".asc"
	for _, f := range zr.File {
		if f.Name != wantFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("tile %s: opening %s in %s: %w", tileName, wantFile, zipPath, err)
		}
		defer rc.Close()
		return ParseASC(rc, tileName)
	}
	return nil, fmt.Errorf("tile %s: no %s inside %s", tileName, wantFile, zipPath)
}
