package water

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mholden/osmaps/internal/terrain"
)

func mosaicFrom(alt [][]float64) *terrain.Mosaic {
	return &terrain.Mosaic{Alt: alt, HasLand: true}
}

func countWater(g *Grid) int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c.IsWater() {
				n++
			}
		}
	}
	return n
}

func TestClassifyLake(t *testing.T) {
	// A 4x4 flat block (a lake at 100 m) inside sloping terrain.
	alt := make([][]float64, 6)
	v := 1.0
	for r := range alt {
		alt[r] = make([]float64, 6)
		for c := range alt[r] {
			alt[r][c] = v
			v++
		}
	}
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			alt[r][c] = 100.0
		}
	}

	g := Classify(mosaicFrom(alt))

	// Only the inner 2x2 of the block has 8 matching neighbours.
	for r := 2; r <= 3; r++ {
		for c := 2; c <= 3; c++ {
			assert.Equal(t, Seed, g.At(c, r), "cell (%d,%d)", c, r)
		}
	}
	// The block's rim is reached by flooding.
	assert.Equal(t, Extended, g.At(1, 1))
	assert.Equal(t, Extended, g.At(4, 4))
	// Sloping terrain stays land.
	assert.Equal(t, Land, g.At(0, 0))
	assert.Equal(t, Land, g.At(5, 5))
	assert.Equal(t, 16, countWater(g))
}

func TestClassifyAllFlat(t *testing.T) {
	alt := make([][]float64, 6)
	for r := range alt {
		alt[r] = make([]float64, 6)
	}
	g := Classify(mosaicFrom(alt))
	// Edge cells can never be seeds but are all flooded.
	assert.Equal(t, 36, countWater(g))
	assert.Equal(t, Seed, g.At(2, 2))
	assert.Equal(t, Extended, g.At(0, 0))
}

func TestClassifyNoFalseSingleCells(t *testing.T) {
	alt := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	g := Classify(mosaicFrom(alt))
	assert.Equal(t, 0, countWater(g))
}

func TestClassifyNoData(t *testing.T) {
	alt := [][]float64{
		{terrain.NoData, 1},
		{2, 3},
	}
	g := Classify(mosaicFrom(alt))
	assert.Equal(t, Seed, g.At(0, 0), "NoData cells are always water")
	assert.Equal(t, Land, g.At(1, 0))
	assert.Equal(t, Land, g.At(0, 1))
}

func TestTolerance(t *testing.T) {
	assert.True(t, sameAlt(10.0, 10.005))
	assert.False(t, sameAlt(10.0, 10.02))
}
