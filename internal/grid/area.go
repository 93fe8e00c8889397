package grid

import (
	"fmt"
	"regexp"
)

// Area describes a rectangular map area as a south-west corner tile plus
// a number of 10x10 km tiles east and north of it.
type Area struct {
	Corner TileRef
	Tiles  [2]int // [0] east-west, [1] north-south
}

// EastTiles returns the east-west extent in tiles.
func (a Area) EastTiles() int { return a.Tiles[0] }

// NorthTiles returns the north-south extent in tiles.
func (a Area) NorthTiles() int { return a.Tiles[1] }

// Label returns a short name for the area, e.g. "NY12 3x2".
func (a Area) Label() string {
	if a.Tiles[0] == 1 && a.Tiles[1] == 1 {
		return a.Corner.Name()
	}
	return fmt.Sprintf("%s %dx%d", a.Corner.Name(), a.Tiles[0], a.Tiles[1])
}

var dimsPattern = regexp.MustCompile(`^([0-9]+)[xX]([0-9]+)$`)

// maxExtentKm caps the size of a single map on either axis.
const maxExtentKm = 2000

// ResolveArea turns a square name (either a 100 km square like NY, or a
// 10x10 km tile like NY12) and a dimensions string like "3x2" into an
// Area. Dimensions are counted in units of the named square's size and
// default to 1x1.
func ResolveArea(name, dims string) (Area, error) {
	var corner TileRef
	var squareKm, multiplier int

	if sq, ok := LookupSquare(name); ok {
		corner = TileRef{Square: sq.Name}
		squareKm = 100
		multiplier = 10
	} else {
		tile, err := ParseTileRef(name)
		if err != nil {
			return Area{}, fmt.Errorf("invalid square name %q: not a 100 km square or 10x10 km tile", name)
		}
		corner = tile
		squareKm = 10
		multiplier = 1
	}

	if dims == "" {
		dims = "1x1"
	}
	m := dimsPattern.FindStringSubmatch(dims)
	if m == nil {
		return Area{}, fmt.Errorf("invalid dimensions %q: expected a form like 3x2", dims)
	}
	var ew, ns int
	fmt.Sscanf(m[1], "%d", &ew)
	fmt.Sscanf(m[2], "%d", &ns)
	if ew == 0 || ns == 0 {
		return Area{}, fmt.Errorf("invalid dimensions %q: extents must be non-zero", dims)
	}
	if ew*squareKm > maxExtentKm || ns*squareKm > maxExtentKm {
		return Area{}, fmt.Errorf("dimensions %q too large: maximum extent is %d km", dims, maxExtentKm)
	}

	return Area{Corner: corner, Tiles: [2]int{ew * multiplier, ns * multiplier}}, nil
}
