package terrain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/grid"
)

// TileStatus records the outcome of loading one 10x10 km tile.
type TileStatus string

const (
	StatusOK      TileStatus = "ok"      // data loaded
	StatusSea     TileStatus = "sea"     // no data file, tile is all sea
	StatusOffGrid TileStatus = "offgrid" // beyond the National Grid
	StatusError   TileStatus = "error"   // data file unreadable or malformed
)

// TileReader is anything that can produce a Raster for a tile. A nil
// raster with nil error means the tile is sea.
type TileReader interface {
	ReadTile(tile grid.TileRef) (*Raster, error)
}

// Mosaic is the combined altitude grid for a rectangular map area,
// assembled from one raster per tile. Alt row 0 is the southernmost
// sample row; cells without data hold NoData.
type Mosaic struct {
	Area     grid.Area      `msgpack:"area"`
	CellSize int            `msgpack:"cell_size"`
	TileCols int            `msgpack:"tile_cols"` // samples per tile east-west
	TileRows int            `msgpack:"tile_rows"` // samples per tile north-south
	Alt      [][]float64    `msgpack:"alt"`
	Tiles    [][]TileStatus `msgpack:"tiles"` // indexed [north][east]
	MinAlt   float64        `msgpack:"min_alt"`
	MaxAlt   float64        `msgpack:"max_alt"`
	HasLand  bool           `msgpack:"has_land"`
}

// Rows returns the number of sample rows in the mosaic.
func (m *Mosaic) Rows() int { return len(m.Alt) }

// Cols returns the number of sample columns in the mosaic.
func (m *Mosaic) Cols() int {
	if len(m.Alt) == 0 {
		return 0
	}
	return len(m.Alt[0])
}

// Assemble loads every tile in the area and combines them into a single
// mosaic. Tiles that fail to load are recorded with StatusError and left
// as NoData; the mosaic is still returned as long as at least one tile
// carries data. An area that is entirely sea yields a mosaic with
// HasLand false and no altitude array.
func Assemble(src TileReader, area grid.Area, logger *zap.SugaredLogger) (*Mosaic, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := &Mosaic{
		Area:  area,
		Tiles: make([][]TileStatus, area.NorthTiles()),
	}
	for n := range m.Tiles {
		m.Tiles[n] = make([]TileStatus, area.EastTiles())
	}

	errCount := 0
	first := true

	for east := 0; east < area.EastTiles(); east++ {
		for north := 0; north < area.NorthTiles(); north++ {
			tile, ok := area.Corner.Offset(east, north)
			if !ok {
				m.Tiles[north][east] = StatusOffGrid
				continue
			}

			ra, err := src.ReadTile(tile)
			if err != nil {
				logger.Warnf("tile %s: %v", tile.Name(), err)
				m.Tiles[north][east] = StatusError
				errCount++
				continue
			}
			if ra == nil {
				m.Tiles[north][east] = StatusSea
				continue
			}

			if first {
				m.CellSize = ra.CellSize
				m.TileCols = ra.Cols
				m.TileRows = ra.RowsCount
				m.Alt = newAltArray(m.TileRows*area.NorthTiles(), m.TileCols*area.EastTiles())
				m.MinAlt, m.MaxAlt = ra.MinAlt, ra.MaxAlt
				m.HasLand = true
				first = false
			} else if ra.CellSize != m.CellSize || ra.Cols != m.TileCols || ra.RowsCount != m.TileRows {
				logger.Warnf("tile %s: characteristics %dx%d@%dm differ from first tile %dx%d@%dm",
					tile.Name(), ra.Cols, ra.RowsCount, ra.CellSize, m.TileCols, m.TileRows, m.CellSize)
				m.Tiles[north][east] = StatusError
				errCount++
				continue
			}

			if ra.MinAlt < m.MinAlt {
				m.MinAlt = ra.MinAlt
			}
			if ra.MaxAlt > m.MaxAlt {
				m.MaxAlt = ra.MaxAlt
			}

			rowBase := north * m.TileRows
			colBase := east * m.TileCols
			for r := 0; r < m.TileRows; r++ {
				copy(m.Alt[rowBase+r][colBase:colBase+m.TileCols], ra.Data[r])
			}
			m.Tiles[north][east] = StatusOK
		}
	}

	if !m.HasLand && errCount > 0 {
		return nil, fmt.Errorf("area %s: no tile data loaded, %d tiles in error", area.Label(), errCount)
	}
	return m, nil
}

func newAltArray(rows, cols int) [][]float64 {
	a := make([][]float64, rows)
	for r := range a {
		row := make([]float64, cols)
		for c := range row {
			row[c] = NoData
		}
		a[r] = row
	}
	return a
}
