// Package stats summarises the altitude distribution of a mosaic: the
// figures the altitude-stats tool prints and the /stats endpoint serves.
package stats

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/internal/terrain"
)

// AltCount is an altitude value with its cell count.
type AltCount struct {
	Alt     float64 `json:"alt"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Band is one histogram bin over an altitude range, carrying the colour
// the ramp would use for its lower edge.
type Band struct {
	Lo     float64     `json:"lo"`
	Hi     float64     `json:"hi"`
	Count  int         `json:"count"`
	Colour color.NRGBA `json:"-"`
	Hex    string      `json:"colour"`
}

// Analysis is the altitude summary for one map area. Cells without data
// carry the NoData sentinel and are included, matching the rendered
// view.
type Analysis struct {
	Area       string     `json:"area"`
	Cells      int        `json:"cells"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Unique     int        `json:"unique_values"`
	MinAlt     float64    `json:"min_alt"`
	MaxAlt     float64    `json:"max_alt"`
	Range      float64    `json:"range"`
	Mean       float64    `json:"mean"`
	MostCommon AltCount   `json:"most_common"`
	Notable    []AltCount `json:"notable"` // below 1 m or at least 1% of cells
	Histogram  []Band     `json:"histogram"`
}

// Analyse computes the altitude summary for a mosaic, colouring the
// histogram with the given scheme.
func Analyse(m *terrain.Mosaic, scheme *render.Scheme) *Analysis {
	a := &Analysis{
		Area: m.Area.Label(),
		Rows: m.Rows(),
		Cols: m.Cols(),
	}
	a.Cells = a.Rows * a.Cols
	if a.Cells == 0 {
		return a
	}

	counts := make(map[float64]int)
	values := make([]float64, 0, a.Cells)
	for _, row := range m.Alt {
		for _, v := range row {
			counts[v]++
			values = append(values, v)
		}
	}
	sort.Float64s(values)

	a.Unique = len(counts)
	a.MinAlt = values[0]
	a.MaxAlt = values[len(values)-1]
	a.Range = a.MaxAlt - a.MinAlt
	a.Mean = stat.Mean(values, nil)

	onePercent := float64(a.Cells) / 100
	for alt, n := range counts {
		if n > a.MostCommon.Count || (n == a.MostCommon.Count && alt < a.MostCommon.Alt) {
			a.MostCommon = AltCount{Alt: alt, Count: n}
		}
		if alt < 1 || float64(n) >= onePercent {
			a.Notable = append(a.Notable, AltCount{Alt: alt, Count: n, Percent: pct(n, a.Cells)})
		}
	}
	a.MostCommon.Percent = pct(a.MostCommon.Count, a.Cells)
	sort.Slice(a.Notable, func(i, j int) bool { return a.Notable[i].Alt < a.Notable[j].Alt })

	a.Histogram = histogram(values, a.MinAlt, a.MaxAlt, scheme)
	return a
}

func pct(n, total int) float64 {
	return float64(n) * 100 / float64(total)
}

// histogram bins the altitudes: 20 m bands for low-relief areas, 100 m
// bands otherwise, with a single catch-all band for negative values.
func histogram(sorted []float64, minAlt, maxAlt float64, scheme *render.Scheme) []Band {
	binSize := 20.0
	if maxAlt > 200 {
		binSize = 100
	}

	var edges []float64
	if minAlt < 0 {
		edges = append(edges, minAlt)
	}
	for edge := 0.0; edge-maxAlt <= 2*binSize; edge += binSize {
		edges = append(edges, edge)
	}
	if len(edges) < 2 {
		return nil
	}

	// gonum's Histogram requires every sample inside the divider range.
	lo := sort.SearchFloat64s(sorted, edges[0])
	hi := sort.SearchFloat64s(sorted, edges[len(edges)-1])
	inRange := sorted[lo:hi]

	binCounts := make([]float64, len(edges)-1)
	stat.Histogram(binCounts, edges, inRange, nil)

	bands := make([]Band, len(binCounts))
	for i, n := range binCounts {
		colour := scheme.Water()
		if edges[i] >= 0 {
			colour = scheme.Land(edges[i])
		}
		bands[i] = Band{
			Lo:     edges[i],
			Hi:     edges[i+1],
			Count:  int(n),
			Colour: colour,
			Hex:    fmt.Sprintf("#%02x%02x%02x", colour.R, colour.G, colour.B),
		}
	}
	return bands
}
