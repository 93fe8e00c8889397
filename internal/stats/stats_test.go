package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/internal/terrain"
)

func testScheme(t *testing.T, maxAlt float64) *render.Scheme {
	t.Helper()
	s, err := render.NewScheme("standard", maxAlt)
	require.NoError(t, err)
	return s
}

func TestAnalyse(t *testing.T) {
	m := &terrain.Mosaic{
		Alt: [][]float64{
			{10, 10, 20},
			{10, 30, 40},
		},
		MinAlt:  10,
		MaxAlt:  40,
		HasLand: true,
	}
	a := Analyse(m, testScheme(t, 40))

	assert.Equal(t, 6, a.Cells)
	assert.Equal(t, 4, a.Unique)
	assert.Equal(t, 10.0, a.MinAlt)
	assert.Equal(t, 40.0, a.MaxAlt)
	assert.Equal(t, 30.0, a.Range)
	assert.InDelta(t, 120.0/6, a.Mean, 1e-9)

	assert.Equal(t, 10.0, a.MostCommon.Alt)
	assert.Equal(t, 3, a.MostCommon.Count)
	assert.InDelta(t, 50.0, a.MostCommon.Percent, 1e-9)

	// Every value here reaches the 1% threshold in a 6-cell grid.
	require.Len(t, a.Notable, 4)
	assert.Equal(t, 10.0, a.Notable[0].Alt)

	// 20 m bands up to beyond 40 m: edges 0,20,40,60,80 -> 4 bands.
	require.NotEmpty(t, a.Histogram)
	assert.Equal(t, 0.0, a.Histogram[0].Lo)
	assert.Equal(t, 20.0, a.Histogram[0].Hi)
	assert.Equal(t, 3, a.Histogram[0].Count, "the three 10 m cells")
	assert.Equal(t, 2, a.Histogram[1].Count, "20 m and 30 m cells")

	total := 0
	for _, b := range a.Histogram {
		total += b.Count
		assert.NotEmpty(t, b.Hex)
	}
	assert.Equal(t, a.Cells, total)
}

func TestAnalyseNegativeBand(t *testing.T) {
	m := &terrain.Mosaic{
		Alt: [][]float64{
			{terrain.NoData, 5},
			{250, 310},
		},
		MinAlt:  terrain.NoData,
		MaxAlt:  310,
		HasLand: true,
	}
	a := Analyse(m, testScheme(t, 310))

	// Negatives collapse into one catch-all first band.
	require.NotEmpty(t, a.Histogram)
	assert.Equal(t, terrain.NoData, a.Histogram[0].Lo)
	assert.Equal(t, 0.0, a.Histogram[0].Hi)
	assert.Equal(t, 1, a.Histogram[0].Count)

	// Over 200 m of relief switches to 100 m bands.
	assert.Equal(t, 100.0, a.Histogram[1].Hi-a.Histogram[1].Lo)

	// The sentinel is below 1 m, so it shows up in the notable list.
	found := false
	for _, n := range a.Notable {
		if n.Alt == terrain.NoData {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyseEmpty(t *testing.T) {
	m := &terrain.Mosaic{}
	a := Analyse(m, testScheme(t, 0))
	assert.Equal(t, 0, a.Cells)
	assert.Empty(t, a.Histogram)
}
