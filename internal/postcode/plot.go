package postcode

import (
	"image"
	"image/color"
	"sort"
)

// GB National Grid extent used for whole-country plots, metres.
const (
	gbMaxEasting  = 700000
	gbMaxNorthing = 1250000
)

// Softened palette cycled across postcode areas. Neighbouring areas can
// still collide; good enough for an overview plot.
var areaPalette = []color.NRGBA{
	{255, 127, 127, 255}, // red
	{127, 127, 255, 255}, // blue
	{127, 255, 127, 255}, // green
	{255, 255, 127, 255}, // yellow
	{255, 210, 127, 255}, // orange
	{207, 143, 247, 255}, // purple
	{210, 148, 148, 255}, // brown
	{255, 223, 229, 255}, // pink
	{127, 246, 246, 255}, // cyan
	{246, 127, 246, 255}, // magenta
	{246, 192, 246, 255}, // violet
	{222, 222, 222, 255}, // grey
}

var plotBackground = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}

// PlotWindow is the map region and size for a dot map.
type PlotWindow struct {
	MinEasting  int
	MinNorthing int
	MaxEasting  int
	MaxNorthing int
	Height      int // image height in pixels; width follows the aspect ratio
}

// GBWindow returns a window covering the whole National Grid.
func GBWindow(height int) PlotWindow {
	return PlotWindow{MaxEasting: gbMaxEasting, MaxNorthing: gbMaxNorthing, Height: height}
}

// AreaColours assigns each postcode area a palette colour. Areas are
// ordered by the western edge of their extent so neighbours tend to get
// different colours, then the palette cycles.
func AreaColours(recs []Record) map[string]color.NRGBA {
	type extent struct {
		area string
		minE int
	}
	extents := make(map[string]int)
	for _, r := range recs {
		if !r.Positioned() {
			continue
		}
		if e, ok := extents[r.Area]; !ok || r.Easting < e {
			extents[r.Area] = r.Easting
		}
	}
	ordered := make([]extent, 0, len(extents))
	for area, minE := range extents {
		ordered = append(ordered, extent{area, minE})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].minE != ordered[j].minE {
			return ordered[i].minE < ordered[j].minE
		}
		return ordered[i].area < ordered[j].area
	})

	colours := make(map[string]color.NRGBA, len(ordered))
	for i, e := range ordered {
		colours[e.area] = areaPalette[i%len(areaPalette)]
	}
	return colours
}

// DotMap renders positioned records as coloured dots on a white
// background, north at the top.
func DotMap(recs []Record, w PlotWindow) *image.NRGBA {
	if w.Height <= 0 {
		w.Height = 1000
	}
	ewExtent := w.MaxEasting - w.MinEasting
	nsExtent := w.MaxNorthing - w.MinNorthing
	if ewExtent <= 0 || nsExtent <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	width := w.Height * ewExtent / nsExtent
	if width < 1 {
		width = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, w.Height))
	for y := 0; y < w.Height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, plotBackground)
		}
	}

	colours := AreaColours(recs)
	for _, r := range recs {
		if !r.Positioned() {
			continue
		}
		if r.Easting < w.MinEasting || r.Easting >= w.MaxEasting ||
			r.Northing < w.MinNorthing || r.Northing >= w.MaxNorthing {
			continue
		}
		x := (r.Easting - w.MinEasting) * width / ewExtent
		y := w.Height - 1 - (r.Northing-w.MinNorthing)*w.Height/nsExtent
		img.SetNRGBA(x, y, colours[r.Area])
	}
	return img
}
