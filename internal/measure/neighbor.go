package measure

import "golang.org/x/xerrors"

type Position int

const (
	Interior Position = iota
	TopLeft
	BottomLeft
	LeftEdge
	TopRight
	BottomRight
	RightEdge
	TopEdge
	BottomEdge
)

func (p Position) String() string {
	switch p {
	case Interior:
		return "interior"
	case TopLeft:
		return "top-left"
	case BottomLeft:
		return "bottom-left"
	case LeftEdge:
		return "left-edge"
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case RightEdge:
		return "right-edge"
	case TopEdge:
		return "top-edge"
	case BottomEdge:
		return "bottom-edge"
	default:
		return "unknown"
	}
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	for q := Interior; q <= BottomEdge; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return xerrors.Errorf("unknown position: %q", text)
}

// Classify places c in one of the nine border cases of a width x height image.
// The left column is checked first, then the right column, then the top and bottom rows.
func Classify(c Coordinate, width int, height int) Position {
	top := c.Y == 0
	bottom := c.Y == height-1

	switch {
	case c.X == 0:
		switch {
		case top:
			return TopLeft
		case bottom:
			return BottomLeft
		default:
			return LeftEdge
		}
	case c.X == width-1:
		switch {
		case top:
			return TopRight
		case bottom:
			return BottomRight
		default:
			return RightEdge
		}
	case top:
		return TopEdge
	case bottom:
		return BottomEdge
	default:
		return Interior
	}
}

type Offset struct {
	DX int
	DY int
}

func (o Offset) From(c Coordinate) Coordinate {
	return Coordinate{X: c.X + o.DX, Y: c.Y + o.DY}
}

// mooreOffsets is the full 8-neighborhood, row by row.
var mooreOffsets = [8]Offset{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// NeighborsOf returns the Moore offsets of c that stay inside [0,width)x[0,height).
// Corners get 3 offsets, edges 5 and interior pixels 8.
func NeighborsOf(c Coordinate, width int, height int) []Offset {
	offsets := make([]Offset, 0, len(mooreOffsets))
	for _, o := range mooreOffsets {
		n := o.From(c)
		if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
			continue
		}
		offsets = append(offsets, o)
	}
	return offsets
}

// Neighbors is NeighborsOf resolved to absolute coordinates.
func Neighbors(c Coordinate, width int, height int) []Coordinate {
	offsets := NeighborsOf(c, width, height)
	coordinates := make([]Coordinate, len(offsets))
	for i, o := range offsets {
		coordinates[i] = o.From(c)
	}
	return coordinates
}
