package render

import (
	"image"
	"image/color"

	"github.com/mholden/osmaps/internal/grid"
)

var (
	landSquareColour = color.NRGBA{0x99, 0xFF, 0x66, 0xFF}
	seaSquareColour  = color.NRGBA{0x99, 0xCC, 0xFF, 0xFF}
	gridLineColour   = color.NRGBA{0x80, 0x80, 0x80, 0xFF}
)

// GridOverview renders the National Grid 100 km square layout: land
// squares green, rectangle-filler sea squares blue, grey square
// boundaries. scale is the square side in pixels.
func GridOverview(scale int) *image.NRGBA {
	if scale < 2 {
		scale = 2
	}
	w, h := grid.Cols*scale, grid.Rows*scale
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		// Row 0 of the grid is the southernmost; image y grows downward.
		northing := (h - 1 - y) / scale
		for x := 0; x < w; x++ {
			easting := x / scale
			if x%scale == 0 || y%scale == 0 {
				img.SetNRGBA(x, y, gridLineColour)
				continue
			}
			sq := grid.SquareAt(easting, northing)
			if sq != nil && sq.Land {
				img.SetNRGBA(x, y, landSquareColour)
			} else {
				img.SetNRGBA(x, y, seaSquareColour)
			}
		}
	}
	return img
}
