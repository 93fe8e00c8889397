package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/mholden/osmaps/internal/terrain"
	"github.com/mholden/osmaps/internal/water"
)

// Image renders a mosaic with its water classification as one pixel per
// altitude sample. Mosaic row 0 is the southernmost, so it lands at the
// bottom of the image.
func Image(m *terrain.Mosaic, wg *water.Grid, scheme *Scheme) *image.NRGBA {
	rows, cols := m.Rows(), m.Cols()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		y := rows - 1 - r
		for c := 0; c < cols; c++ {
			if wg.At(c, r).IsWater() {
				img.SetNRGBA(c, y, scheme.Water())
			} else {
				img.SetNRGBA(c, y, scheme.Land(m.Alt[r][c]))
			}
		}
	}
	return img
}

// EncodePNG writes img to w in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// WritePNG writes img to a file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
