// Package water flags cells of an altitude mosaic that are likely to be
// water. Terrain 50 does not mark water, but lakes and sea show up as
// contiguous regions of identical altitude; the heuristic finds flat
// seed cells and floods outward from them. Flat inland terrain produces
// known false positives.
package water

import (
	"math"

	"github.com/mholden/osmaps/internal/terrain"
)

// Class is the per-cell water classification.
type Class uint8

const (
	Land     Class = iota
	Seed           // same altitude as at least 6 of its 8 neighbours
	Extended       // reached from a flagged cell at the same altitude
)

// IsWater reports whether the class marks a water cell.
func (c Class) IsWater() bool { return c != Land }

// altTolerance is how close two float altitudes must be to count as the
// same level.
const altTolerance = 0.01

func sameAlt(a, b float64) bool {
	return math.Abs(a-b) < altTolerance
}

// Grid holds the classification for every cell of a mosaic, indexed the
// same way as the mosaic's altitude array.
type Grid struct {
	Cells [][]Class
}

// At returns the class at column c, row r.
func (g *Grid) At(c, r int) Class { return g.Cells[r][c] }

// Classify runs the water heuristic over a mosaic. Cells without data
// (sea and off-grid tiles) are always water seeds.
func Classify(m *terrain.Mosaic) *Grid {
	rows, cols := m.Rows(), m.Cols()
	g := &Grid{Cells: make([][]Class, rows)}
	for r := range g.Cells {
		g.Cells[r] = make([]Class, cols)
	}

	// Phase one: seed cells whose altitude matches nearly all of their
	// neighbourhood. Cells on the mosaic edge count missing neighbours
	// as mismatches.
	var queue [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			alt := m.Alt[r][c]
			if alt == terrain.NoData || flatNeighbourhood(m, c, r) {
				g.Cells[r][c] = Seed
				if alt != terrain.NoData {
					queue = append(queue, [2]int{c, r})
				}
			}
		}
	}

	// Phase two: flood outward to 8-connected neighbours at the same
	// altitude until no cell changes.
	for qi := 0; qi < len(queue); qi++ {
		c, r := queue[qi][0], queue[qi][1]
		alt := m.Alt[r][c]
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nc, nr := c+dc, r+dr
				if (dc == 0 && dr == 0) || nc < 0 || nc >= cols || nr < 0 || nr >= rows {
					continue
				}
				if g.Cells[nr][nc] != Land {
					continue
				}
				if sameAlt(alt, m.Alt[nr][nc]) {
					g.Cells[nr][nc] = Extended
					queue = append(queue, [2]int{nc, nr})
				}
			}
		}
	}

	return g
}

// flatNeighbourhood reports whether at least 6 of the cell's 8
// neighbours sit at the same altitude.
func flatNeighbourhood(m *terrain.Mosaic, c, r int) bool {
	alt := m.Alt[r][c]
	same, notSame := 0, 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dc == 0 && dr == 0 {
				continue
			}
			nc, nr := c+dc, r+dr
			if nc < 0 || nc >= m.Cols() || nr < 0 || nr >= m.Rows() {
				notSame++
				if notSame > 2 {
					return false
				}
				continue
			}
			if sameAlt(alt, m.Alt[nr][nc]) {
				same++
			} else {
				notSame++
				if notSame > 2 {
					return false
				}
			}
		}
	}
	return same >= 6
}
