package resize

import "fmt"

// Edge says which side of an axis a handle moves.
type Edge int

const (
	// EdgeNone leaves the axis untouched.
	EdgeNone Edge = iota
	// EdgeLeading moves the left or top edge; the opposite edge stays put.
	EdgeLeading
	// EdgeTrailing moves the right or bottom edge.
	EdgeTrailing
)

// Direction is one of the eight resize handles.
type Direction struct {
	name       string
	Horizontal Edge
	Vertical   Edge
}

var (
	North     = Direction{name: "n", Vertical: EdgeLeading}
	South     = Direction{name: "s", Vertical: EdgeTrailing}
	East      = Direction{name: "e", Horizontal: EdgeTrailing}
	West      = Direction{name: "w", Horizontal: EdgeLeading}
	NorthEast = Direction{name: "ne", Horizontal: EdgeTrailing, Vertical: EdgeLeading}
	NorthWest = Direction{name: "nw", Horizontal: EdgeLeading, Vertical: EdgeLeading}
	SouthEast = Direction{name: "se", Horizontal: EdgeTrailing, Vertical: EdgeTrailing}
	SouthWest = Direction{name: "sw", Horizontal: EdgeLeading, Vertical: EdgeTrailing}
)

// Directions lists every handle in creation order.
var Directions = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

func (d Direction) String() string {
	return d.name
}

// ParseDirection resolves a handle name such as "ne".
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.name == s {
			return d, nil
		}
	}
	return Direction{}, fmt.Errorf("unknown resize direction %q", s)
}
