package terrain

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/grid"
)

// fakeReader serves canned rasters by tile name.
type fakeReader struct {
	rasters map[string]string // tile name -> asc text
	errs    map[string]error
}

func (f *fakeReader) ReadTile(tile grid.TileRef) (*Raster, error) {
	if err, ok := f.errs[tile.Name()]; ok {
		return nil, err
	}
	asc, ok := f.rasters[tile.Name()]
	if !ok {
		return nil, nil // sea
	}
	return ParseASC(strings.NewReader(asc), tile.Name())
}

func ascGrid(rows, cols int, base float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ncols %d\nnrows %d\nxllcorner 0\nyllcorner 0\ncellsize 50\n", cols, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.1f", base+float64(r*cols+c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func testLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func TestAssemble(t *testing.T) {
	src := &fakeReader{rasters: map[string]string{
		"NY12": ascGrid(2, 2, 10), // SW tile
		"NY22": ascGrid(2, 2, 20), // east of it
		// NY13 and NY23 (northern row) are sea
	}}
	area, err := grid.ResolveArea("NY12", "2x2")
	if err != nil {
		t.Fatal(err)
	}

	m, err := Assemble(src, area, testLogger())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !m.HasLand {
		t.Fatal("expected land in mosaic")
	}
	if m.Rows() != 4 || m.Cols() != 4 {
		t.Fatalf("mosaic dims = %dx%d, want 4x4", m.Cols(), m.Rows())
	}
	if m.Tiles[0][0] != StatusOK || m.Tiles[0][1] != StatusOK {
		t.Errorf("southern tiles = %v %v, want ok ok", m.Tiles[0][0], m.Tiles[0][1])
	}
	if m.Tiles[1][0] != StatusSea || m.Tiles[1][1] != StatusSea {
		t.Errorf("northern tiles = %v %v, want sea sea", m.Tiles[1][0], m.Tiles[1][1])
	}

	// SW corner of the SW tile; file rows are north first, so the
	// southern raster row carries the higher base offsets.
	if got := m.Alt[0][0]; got != 12.0 {
		t.Errorf("Alt[0][0] = %v, want 12.0", got)
	}
	// First sample of the eastern tile
	if got := m.Alt[0][2]; got != 22.0 {
		t.Errorf("Alt[0][2] = %v, want 22.0", got)
	}
	// Sea tiles stay at the NoData sentinel
	if got := m.Alt[3][3]; got != NoData {
		t.Errorf("Alt[3][3] = %v, want NoData", got)
	}
	if m.MinAlt != 10.0 || m.MaxAlt != 23.0 {
		t.Errorf("min/max = %v/%v, want 10/23", m.MinAlt, m.MaxAlt)
	}
}

func TestAssembleAllSea(t *testing.T) {
	src := &fakeReader{}
	area, _ := grid.ResolveArea("NY12", "1x1")
	m, err := Assemble(src, area, testLogger())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if m.HasLand {
		t.Error("expected no land")
	}
	if m.Tiles[0][0] != StatusSea {
		t.Errorf("tile status = %v, want sea", m.Tiles[0][0])
	}
}

func TestAssembleTileError(t *testing.T) {
	src := &fakeReader{
		rasters: map[string]string{"NY12": ascGrid(2, 2, 10)},
		errs:    map[string]error{"NY22": errors.New("boom")},
	}
	area, _ := grid.ResolveArea("NY12", "2x1")
	m, err := Assemble(src, area, testLogger())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if m.Tiles[0][1] != StatusError {
		t.Errorf("tile status = %v, want error", m.Tiles[0][1])
	}
	if !m.HasLand {
		t.Error("expected mosaic to keep the loaded tile")
	}
}

func TestAssembleOnlyErrors(t *testing.T) {
	src := &fakeReader{errs: map[string]error{"NY12": errors.New("boom")}}
	area, _ := grid.ResolveArea("NY12", "1x1")
	if _, err := Assemble(src, area, testLogger()); err == nil {
		t.Error("expected an error when no tile loads and some fail")
	}
}

func TestAssembleMismatchedTiles(t *testing.T) {
	src := &fakeReader{rasters: map[string]string{
		"NY12": ascGrid(2, 2, 10),
		"NY22": ascGrid(3, 3, 20),
	}}
	area, _ := grid.ResolveArea("NY12", "2x1")
	m, err := Assemble(src, area, testLogger())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if m.Tiles[0][1] != StatusError {
		t.Errorf("mismatched tile status = %v, want error", m.Tiles[0][1])
	}
}

func writeTileZip(t *testing.T, dir, tileName, asc string) {
	t.Helper()
	squareDir := filepath.Join(dir, "data", strings.ToLower(tileName[:2]))
	if err := os.MkdirAll(squareDir, 0o755); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(squareDir, strings.ToLower(tileName)+"_OST50GRID_20230608.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create(strings.ToUpper(tileName) + ".asc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(asc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceReadTile(t *testing.T) {
	dir := t.TempDir()
	writeTileZip(t, dir, "NY12", ascGrid(2, 2, 10))

	src, err := NewSource(dir)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	tile, _ := grid.ParseTileRef("NY12")
	ra, err := src.ReadTile(tile)
	if err != nil {
		t.Fatalf("ReadTile: %v", err)
	}
	if ra == nil || ra.Cols != 2 {
		t.Fatalf("unexpected raster: %+v", ra)
	}

	// Square folder exists but no zip for this tile: sea.
	seaTile, _ := grid.ParseTileRef("NY34")
	ra, err = src.ReadTile(seaTile)
	if err != nil || ra != nil {
		t.Errorf("missing zip: raster=%v err=%v, want nil/nil", ra, err)
	}

	// No folder for the whole square: sea.
	tqTile, _ := grid.ParseTileRef("TQ00")
	ra, err = src.ReadTile(tqTile)
	if err != nil || ra != nil {
		t.Errorf("missing square dir: raster=%v err=%v, want nil/nil", ra, err)
	}
}

func TestNewSourceMissingDir(t *testing.T) {
	if _, err := NewSource(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error for a missing data directory")
	}
}
