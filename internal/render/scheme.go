// Package render turns altitude mosaics into raster images: a colour
// ramp maps altitude to an RGB shade, water cells get a fixed blue, and
// the result is encoded as PNG.
package render

import (
	"fmt"
	"image/color"
	"sort"
	"sync"
)

type stop struct {
	alt float64
	rgb color.NRGBA
}

// Ramps are anchored so that Ben Nevis (1345 m) sits just below the top
// stop.
var schemes = map[string][]stop{
	"standard": {
		{-10, color.NRGBA{0xFF, 0xFF, 0xEE, 0xFF}},
		{0, color.NRGBA{0xCC, 0xFF, 0xCC, 0xFF}},
		{180, color.NRGBA{0xFF, 0xE9, 0xB3, 0xFF}},
		{300, color.NRGBA{0xFF, 0xCC, 0x99, 0xFF}},
		{430, color.NRGBA{0xFF, 0xBF, 0x80, 0xFF}},
		{610, color.NRGBA{0xFF, 0xB3, 0x66, 0xFF}},
		{900, color.NRGBA{0xFF, 0x99, 0x33, 0xFF}},
		{1350, color.NRGBA{0xB3, 0x59, 0x00, 0xFF}},
	},
	"classic": {
		{-10, color.NRGBA{0xFF, 0xFF, 0xEE, 0xFF}},
		{0, color.NRGBA{0xFF, 0xFF, 0x99, 0xFF}},
		{60, color.NRGBA{0xFF, 0xE9, 0xB3, 0xFF}},
		{180, color.NRGBA{0xFF, 0xD9, 0xB3, 0xFF}},
		{300, color.NRGBA{0xFF, 0xCC, 0x99, 0xFF}},
		{430, color.NRGBA{0xFF, 0xBF, 0x80, 0xFF}},
		{610, color.NRGBA{0xFF, 0xB3, 0x66, 0xFF}},
		{900, color.NRGBA{0xFF, 0x99, 0x33, 0xFF}},
		{1350, color.NRGBA{0xB3, 0x59, 0x00, 0xFF}},
	},
}

var (
	waterColour = color.NRGBA{0xCC, 0xE5, 0xFF, 0xFF}
	black       = color.NRGBA{0x00, 0x00, 0x00, 0xFF}
)

// SchemeNames lists the available colour scheme names.
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultScheme is used when no scheme is configured or requested.
const DefaultScheme = "standard"

// Scheme maps altitudes to colours. Positive altitudes are rescaled so
// the view's maximum altitude reaches the top of the ramp, which keeps
// low-relief maps from rendering as a single shade.
type Scheme struct {
	Name   string
	stops  []stop
	maxAlt float64

	mu   sync.Mutex
	memo map[float64]color.NRGBA
}

// NewScheme builds a colour scheme. maxAlt is the maximum altitude of
// the view being rendered; values at or below zero disable rescaling.
func NewScheme(name string, maxAlt float64) (*Scheme, error) {
	if name == "" {
		name = DefaultScheme
	}
	stops, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("unknown colour scheme %q (have %v)", name, SchemeNames())
	}
	return &Scheme{
		Name:   name,
		stops:  stops,
		maxAlt: maxAlt,
		memo:   make(map[float64]color.NRGBA),
	}, nil
}

// Water returns the colour for cells flagged as water.
func (s *Scheme) Water() color.NRGBA { return waterColour }

// Land returns the colour for a land cell at the given altitude.
// Altitudes outside the ramp render black.
func (s *Scheme) Land(alt float64) color.NRGBA {
	top := s.stops[len(s.stops)-1].alt
	effective := alt
	if alt > 0 && s.maxAlt > 0 {
		effective = alt * (top - 0.1) / s.maxAlt
	}
	if alt < s.stops[0].alt {
		return black
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rgb, ok := s.memo[effective]; ok {
		return rgb
	}

	// Find the first stop above the effective altitude and interpolate
	// from the stop below it.
	upper := -1
	for i, st := range s.stops {
		if effective < st.alt {
			upper = i
			break
		}
	}
	var rgb color.NRGBA
	if upper <= 0 {
		// Beyond either end of the ramp.
		rgb = black
	} else {
		lo, hi := s.stops[upper-1], s.stops[upper]
		f := (effective - lo.alt) / (hi.alt - lo.alt)
		rgb = color.NRGBA{
			R: lerp(lo.rgb.R, hi.rgb.R, f),
			G: lerp(lo.rgb.G, hi.rgb.G, f),
			B: lerp(lo.rgb.B, hi.rgb.B, f),
			A: 0xFF,
		}
	}
	s.memo[effective] = rgb
	return rgb
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f)
}
