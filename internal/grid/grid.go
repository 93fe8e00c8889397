// Package grid models the Ordnance Survey National Grid: the lettered
// 100x100 km squares covering Great Britain and the 10x10 km tiles within
// them that the Terrain 50 dataset is distributed in.
package grid

import (
	"fmt"
	"regexp"
	"strings"
)

// Grid extent in 100 km squares. The lettered grid is built from 500 km
// super-squares laid out HJ / NO / ST, each split 5x5.
const (
	Cols = 10 // east-west
	Rows = 15 // north-south
)

// MetresPerSquare is the side length of a 100 km square in metres.
const MetresPerSquare = 100000

// Square is one 100x100 km National Grid square, e.g. NY.
type Square struct {
	Name          string
	EastingIndex  int  // 100 km units east of the SV origin
	NorthingIndex int  // 100 km units north of the SV origin
	Land          bool // square contains GB land
}

// SWOrigin returns the full easting and northing, in metres, of the
// square's south-west corner.
func (s *Square) SWOrigin() (easting, northing int) {
	return s.EastingIndex * MetresPerSquare, s.NorthingIndex * MetresPerSquare
}

// Rows of 500 km super-squares and of letters within each, north first.
var superRows = []string{"HJ", "NO", "ST"}
var innerRows = []string{"ABCDE", "FGHJK", "LMNOP", "QRSTU", "VWXYZ"}

// Squares not containing GB land, kept so the grid forms a full rectangle.
// A leading '-' lists the excluded letters for that first letter; a
// leading '+' lists the only included ones.
var landStatus = []struct {
	first   byte
	letters string
}{
	{'S', "-ABFGLQ"},
	{'T', "-BCDEHJKNOPSTUWXYZ"},
	{'N', "-QV"},
	{'H', "-ABCDEFGHJKLMNQRSV"},
	{'O', "+V"}, // only OV touches land
	{'J', "+"},  // all sea
}

var (
	squaresByIndex [Rows][Cols]*Square
	squaresByName  = make(map[string]*Square)
)

func init() {
	for superCol := 0; superCol < len(superRows[0]); superCol++ {
		for superRow := 0; superRow < len(superRows); superRow++ {
			// superRow 0 is the southernmost row of super-squares
			first := superRows[len(superRows)-1-superRow][superCol]
			for innerCol := 0; innerCol < len(innerRows[0]); innerCol++ {
				for innerRow := 0; innerRow < len(innerRows); innerRow++ {
					second := innerRows[len(innerRows)-1-innerRow][innerCol]
					sq := &Square{
						Name:          string(first) + string(second),
						EastingIndex:  superCol*5 + innerCol,
						NorthingIndex: superRow*5 + innerRow,
					}
					squaresByIndex[sq.NorthingIndex][sq.EastingIndex] = sq
					squaresByName[sq.Name] = sq
				}
			}
		}
	}

	for _, st := range landStatus {
		for _, c := range "ABCDEFGHJKLMNOPQRSTUVWXYZ" {
			sq := squaresByName[string(st.first)+string(c)]
			switch st.letters[0] {
			case '-':
				sq.Land = !strings.ContainsRune(st.letters, c)
			case '+':
				sq.Land = strings.ContainsRune(st.letters, c)
			}
		}
	}
}

// LookupSquare returns the 100 km square with the given two-letter name.
func LookupSquare(name string) (*Square, bool) {
	sq, ok := squaresByName[strings.ToUpper(name)]
	return sq, ok
}

// SquareAt returns the square at the given indexes, or nil when off-grid.
func SquareAt(eastingIndex, northingIndex int) *Square {
	if eastingIndex < 0 || eastingIndex >= Cols || northingIndex < 0 || northingIndex >= Rows {
		return nil
	}
	return squaresByIndex[northingIndex][eastingIndex]
}

// NextEast returns the name of the square one step east, or "" past the
// grid edge.
func NextEast(name string) string {
	sq, ok := LookupSquare(name)
	if !ok {
		return ""
	}
	next := SquareAt(sq.EastingIndex+1, sq.NorthingIndex)
	if next == nil {
		return ""
	}
	return next.Name
}

// NextNorth returns the name of the square one step north, or "" past the
// grid edge.
func NextNorth(name string) string {
	sq, ok := LookupSquare(name)
	if !ok {
		return ""
	}
	next := SquareAt(sq.EastingIndex, sq.NorthingIndex+1)
	if next == nil {
		return ""
	}
	return next.Name
}

// TileRef identifies a 10x10 km tile within a 100 km square, e.g. NY12,
// where the digits are the easting and northing offsets in 10 km units.
type TileRef struct {
	Square string
	East   int
	North  int
}

var tileRefPattern = regexp.MustCompile(`^([A-Za-z]{2})([0-9])([0-9])$`)

// ParseTileRef validates and parses a 10x10 km tile name such as NY12.
func ParseTileRef(name string) (TileRef, error) {
	m := tileRefPattern.FindStringSubmatch(name)
	if m == nil {
		return TileRef{}, fmt.Errorf("invalid 10x10 km tile name %q", name)
	}
	squareName := strings.ToUpper(m[1])
	if _, ok := LookupSquare(squareName); !ok {
		return TileRef{}, fmt.Errorf("unknown grid square %q in tile name %q", squareName, name)
	}
	return TileRef{
		Square: squareName,
		East:   int(m[2][0] - '0'),
		North:  int(m[3][0] - '0'),
	}, nil
}

// Name returns the tile name, e.g. NY12.
func (t TileRef) Name() string {
	return fmt.Sprintf("%s%d%d", t.Square, t.East, t.North)
}

// Offset returns the tile reached by moving eastInc and northInc tiles
// east and north of t. The second return is false when the move leaves
// the National Grid. Offsets must be non-negative.
func (t TileRef) Offset(eastInc, northInc int) (TileRef, bool) {
	square := t.Square

	east := (t.East + eastInc) % 10
	for i := 0; i < (t.East+eastInc-east)/10; i++ {
		square = NextEast(square)
		if square == "" {
			return TileRef{}, false
		}
	}

	north := (t.North + northInc) % 10
	for i := 0; i < (t.North+northInc-north)/10; i++ {
		square = NextNorth(square)
		if square == "" {
			return TileRef{}, false
		}
	}

	return TileRef{Square: square, East: east, North: north}, true
}

// SWOrigin returns the full easting and northing, in metres, of the
// tile's south-west corner.
func (t TileRef) SWOrigin() (easting, northing int) {
	sq, _ := LookupSquare(t.Square)
	e, n := sq.SWOrigin()
	return e + t.East*10000, n + t.North*10000
}
